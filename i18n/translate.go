// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// templateCache holds compiled templates keyed by their source text.
var templateCache sync.Map

type Vars map[string]any

// UserError is an error whose message is already translated and may be shown to users.
type UserError struct {
	msg string
}

// NewUserError translates msgid for the locale in ctx.
func NewUserError(ctx context.Context, msgid string, kv ...any) *UserError {
	return &UserError{msg: Tr(ctx, msgid, kv...)}
}

func (e *UserError) Error() string {
	return e.msg
}

// message identifies one catalogue entry. plural is empty for messages
// without plural forms.
type message struct {
	msgctxt, msgid, plural string
	n                      int
}

func (m message) lookup(loc *gotext.Locale) (string, bool) {
	switch {
	case loc == nil:
	case m.plural != "":
		if loc.IsTranslatedND(poDomain, m.msgid, m.n) {
			return loc.GetND(poDomain, m.msgid, m.plural, m.n), true
		}
	case m.msgctxt != "":
		if loc.IsTranslatedDC(poDomain, m.msgid, m.msgctxt) {
			return loc.GetDC(poDomain, m.msgid, m.msgctxt), true
		}
	default:
		if loc.IsTranslatedD(poDomain, m.msgid) {
			return loc.GetD(poDomain, m.msgid), true
		}
	}

	if m.plural != "" && m.n != 1 {
		return m.plural, false
	}

	return m.msgid, false
}

// Tr translates msgid, the English UI text, for the locale in ctx.
// kv are alternating placeholder names and values.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	return translate(ctx, message{msgid: msgid}, v(kv...))
}

// TrC translates msgid under a disambiguating context, like pgettext.
func TrC(ctx context.Context, msgctxt, msgid string, kv ...any) string {
	return translate(ctx, message{msgctxt: msgctxt, msgid: msgid}, v(kv...))
}

// TrN picks the singular or plural form for n.
func TrN(ctx context.Context, singular, plural string, n int, kv ...any) string {
	return translate(ctx, message{msgid: singular, plural: plural, n: n}, v(kv...))
}

func translate(ctx context.Context, m message, vars Vars) string {
	loc, matched := resolveLocale(TagFrom(ctx))

	text, found := m.lookup(loc)

	// The base locale is the msgid language, so it never counts as missing.
	if !found && matched != baseTag && strictMissingKeys() {
		logMissingOnce(matched.String(), buildLogKey(m.msgctxt, m.msgid))

		text = "⟦" + text + "⟧"
	}

	return render(matched, text, vars)
}

// render executes s as a text/template with data when s contains actions.
func render(locale language.Tag, s string, data Vars) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var tmpl *template.Template

	if cached, ok := templateCache.Load(s); ok {
		tmpl = cached.(*template.Template)
	} else {
		var err error

		tmpl, err = template.New("msg").Option("missingkey=error").Parse(s)
		if err != nil {
			Logger.Warn().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Failed to parse translation template")

			return s
		}

		templateCache.Store(s, tmpl)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		Logger.Warn().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Failed to execute translation template")

		return s
	}

	return buf.String()
}

// resolveLocale matches t against the loaded locales. Before Setup it
// returns nil and the base tag.
func resolveLocale(t language.Tag) (*gotext.Locale, language.Tag) {
	if matcher == nil {
		return nil, baseTag
	}

	matched, _ := language.MatchStrings(matcher, t.String())
	key := strippedTagString(matched)
	matched = language.Make(key)

	return localesByTag[key], matched
}

// v builds Vars from alternating key, value pairs. It panics on programmer error.
func v(kv ...any) Vars {
	if len(kv)%2 != 0 {
		panic("i18n: odd number of arguments, want key, value pairs")
	}

	m := make(Vars, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("i18n: key must be string")
		}

		m[k] = kv[i+1]
	}

	return m
}
