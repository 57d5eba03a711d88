// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"io"
)

// MsgKey is an English UI string used as its own gettext msgid, for
// example MsgKey("Hide translated").
//
// cmd/i18n_extract collects MsgKey constants and conversions into the
// template catalogue.
type MsgKey string

// Tr resolves the key in the language carried by ctx. A nil ctx, or a
// call before Setup, yields the key itself.
func (s MsgKey) Tr(ctx context.Context) string {
	return Tr(ctx, string(s))
}

// Render writes the translated key, which makes MsgKey a templ.Component.
func (s MsgKey) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, s.Tr(ctx))

	return err
}
