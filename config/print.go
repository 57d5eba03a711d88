// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Msg("Starting inline translator")

	configYAML, err := cfg.redactedYAML()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}

// redactedYAML marshals a shallow copy of cfg with secrets removed.
func (cfg *ServerConfig) redactedYAML() ([]byte, error) {
	printable := *cfg

	if printable.Security.Secret != "" {
		printable.Security.Secret = redactedValue
	}

	if printable.Storage.DSN != "" {
		printable.Storage.DSN = redactDSN(printable.Storage.DSN)
	}

	return yaml.MarshalWithOptions(printable, GetDurationEncoderOption())
}

// redactDSN hides the password of a URL-style DSN. Other DSNs are hidden entirely.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return redactedValue
	}

	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}

	return u.String()
}
