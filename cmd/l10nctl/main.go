// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Command l10nctl administers an inline translator installation.

	l10nctl keygen
	l10nctl token -name ada [-permission /l10n**] [-ttl 24h]
	l10nctl import [-overwrite] po/nl.po locales/active.de.toml
	l10nctl edit -api https://example.org/api/v1/i18n -token T -key app.title -set nl=Titel page.html

Commands that read the configuration accept -config, like the server.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/core/audit"
)

var (
	errUsage          = errors.New("usage: l10nctl <keygen|token|import|edit> [flags]")
	errUnknownCommand = errors.New("unknown command")
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout io.Writer) error
}

var commands = []command{
	{"keygen", "generate a token signing key", runKeygen},
	{"token", "issue a translator token", runToken},
	{"import", "import .po and .toml catalogues into the store", runImport},
	{"edit", "edit a translation of a rendered page", runEdit},
}

func main() {
	audit.SetDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		log.Fatal().Err(err).Msg("l10nctl failed")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		for _, c := range commands {
			fmt.Fprintf(stdout, "%-8s %s\n", c.name, c.summary)
		}

		return nil
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout)
		}
	}

	return fmt.Errorf("%w: %q", errUnknownCommand, args[0])
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("l10nctl "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	return fs
}

// loadConfig loads the server configuration from path, or from
// L10N_CONFIGFILE and ./config.yaml when path is empty.
func loadConfig(path string) (*config.ServerConfig, error) {
	if path == "" {
		path = os.Getenv("L10N_CONFIGFILE")
	}

	if path == "" {
		path = "./config.yaml"
	}

	cfg := &config.ServerConfig{}
	if err := cfg.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)

	return nil
}
