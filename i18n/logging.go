// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"sync"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/config"
)

// Logger is replaced by Setup with one tagged sys=i18n.
var Logger = zerolog.Nop()

type missingKey struct {
	locale, msgid string
}

// reported holds the missingKey values already warned about.
var reported sync.Map

func strictMissingKeys() bool {
	return config.Global.Internationalization.StrictMissingKeys
}

// logMissingOnce warns about an untranslated msgid the first time it is
// seen for a locale. It is a no-op outside strict mode.
func logMissingOnce(locale, msgid string) {
	if !strictMissingKeys() {
		return
	}

	if _, seen := reported.LoadOrStore(missingKey{locale, msgid}, struct{}{}); seen {
		return
	}

	Logger.Warn().Str("locale", locale).Str("key", msgid).Msg("Missing i18n translation")
}

// strippedTagString drops variants and extensions, so "de-DE-u-co-phonebk"
// is reported as "de-DE".
func strippedTagString(tag language.Tag) string {
	base, script, region := tag.Raw()
	stripped, _ := language.Compose(base, script, region)

	return stripped.String()
}

// buildLogKey returns the gettext lookup key for a msgid in msgctxt.
func buildLogKey(msgctxt, msgid string) string {
	if msgctxt == "" {
		return msgid
	}

	return msgctxt + gotext.EotSeparator + msgid
}
