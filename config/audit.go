// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFilePermissions = 0o666

var logLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// setupAudit installs the global logger described by cfg.Log.
func (cfg *ServerConfig) setupAudit() {
	level, ok := logLevels[cfg.Log.Level]
	if cfg.Development.InDevelopment {
		level, ok = zerolog.DebugLevel, true
	}

	if ok {
		zerolog.SetGlobalLevel(level)
	}

	outputs := cfg.Log.Outputs
	if len(outputs) == 0 {
		outputs = []string{"/dev/stderr"}
	}

	writers := make([]io.Writer, 0, len(outputs))

	for _, output := range outputs {
		w, err := cfg.logWriter(output)
		if err != nil {
			// zerolog is not set up yet, so this goes straight to stderr.
			fmt.Fprintf(os.Stderr, "skipping log output %s: %v\n", output, err)

			continue
		}

		writers = append(writers, w)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
}

// logWriter opens a single log destination. Files receive raw JSON when
// cfg.Log.Format is "json".
func (cfg *ServerConfig) logWriter(output string) (io.Writer, error) {
	switch output {
	case "/dev/stdout":
		return ConsoleWriter(os.Stdout), nil
	case "/dev/stderr":
		return ConsoleWriter(os.Stderr), nil
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) // #nosec:G302,G304
	if err != nil {
		return nil, err
	}

	if cfg.Log.Format == "json" {
		return file, nil
	}

	return ConsoleWriter(file), nil
}

// ConsoleWriter returns a human readable zerolog writer for f. Colors are
// enabled only on terminals, where request logs are also condensed to
// "[destination] status method url".
func ConsoleWriter(f *os.File) io.Writer {
	color := isatty.IsTerminal(f.Fd())

	w := zerolog.ConsoleWriter{Out: f, NoColor: !color, TimeFormat: time.DateTime}
	if color {
		w.FormatPrepare = condenseRequestLog
	}

	return w
}

func condenseRequestLog(m map[string]any) error {
	if m["sys"] != "http" {
		return nil
	}

	m["message"] = fmt.Sprintf("[%v] %v %-5v %v", m["destination"], m["status_code"], m["method"], m["url"])

	for _, k := range []string{"sys", "destination", "method", "status_code", "url", "request_id"} {
		delete(m, k)
	}

	return nil
}
