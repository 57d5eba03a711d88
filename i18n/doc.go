// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n translates the user interface of the inline translator itself:
menu labels, the registry panel and overlay buttons, and error messages.
These strings live in GNU gettext .po catalogues, separate from the
translations users edit through the overlay.

Use the original English UI text as the msgid:

	i18n.Tr(ctx, "Hide translated")
	i18n.TrN(ctx, "{{.Count}} key", "{{.Count}} keys", n, "Count", n)

Placeholders use text/template syntax. The request language is carried in the
context; see [WithRequest] and [WithTag].

Missing translations return the msgid unchanged. With strict missing keys
enabled they are logged once per locale and key and wrapped as "⟦...⟧".
*/
package i18n
