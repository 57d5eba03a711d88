// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/ride/inlinetranslator/core/security"
)

// runKeygen prints a new secret key and its public key.
func runKeygen(_ context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("keygen")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := security.NewSecretKeyHex()

	authority, err := security.NewAuthority(secret)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "secret: %s\npublic: %s\n", secret, authority.PublicKeyHex())

	return nil
}
