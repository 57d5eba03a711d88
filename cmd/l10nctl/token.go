// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/core/security"
)

var errNameRequired = errors.New("token: -name is required")

// runToken issues a user token signed with the configured secret, or with
// -secret when given.
func runToken(_ context.Context, args []string, stdout io.Writer) error {
	var permissions listFlag

	fs := newFlagSet("token")
	configPath := fs.String("config", "", "configuration file")
	secret := fs.String("secret", "", "secret key in hex, instead of the configured one")
	name := fs.String("name", "", "user name")
	ttl := fs.Duration("ttl", 0, "token lifetime, defaults to security.tokenTTL")
	fs.Var(&permissions, "permission", "path glob the user may reach, repeatable (default security.permission)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return errNameRequired
	}

	var (
		cfg       *config.ServerConfig
		authority *security.Authority
		err       error
	)

	if *secret != "" {
		cfg = &config.ServerConfig{}
		cfg.SetDefaults()

		authority, err = security.NewAuthority(*secret)
		if err != nil {
			return err
		}
	} else {
		cfg, err = loadConfig(*configPath)
		if err != nil {
			return err
		}

		authority = cfg.Authority()
	}

	if len(permissions) == 0 {
		permissions = listFlag{cfg.Security.Permission}
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.Security.TokenTTL
	}

	token, err := authority.Issue(security.User{Name: *name, Permissions: permissions}, lifetime)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, token)

	return nil
}
