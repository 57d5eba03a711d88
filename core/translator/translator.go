// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package translator turns translation keys into display text for one locale.

[Generic] renders the stored value, or the placeholder when there is none.
[Inline] renders the same text wrapped in an inline translation marker, which
the widget discovers and makes editable. [Manager] picks between the two per
user and serves the locale-wide operations of the translator API.
*/
package translator

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

// Translator resolves keys for a single locale.
type Translator interface {
	// Locale returns the canonical locale code.
	Locale() string

	// Translate renders key. Every %name% in the text is replaced by vars[name].
	// Missing values render as the placeholder; Translate never fails.
	Translate(ctx context.Context, key string, vars map[string]string) string

	// Translation returns the stored value, or nil when there is none.
	Translation(ctx context.Context, key string) (*string, error)

	// SetTranslation stores value for key.
	SetTranslation(ctx context.Context, key, value string) error
}

// Generic renders plain translated text.
type Generic struct {
	locale string
	store  translation.Store
}

var _ Translator = (*Generic)(nil)

func NewGeneric(locale string, store translation.Store) *Generic {
	return &Generic{locale: locale, store: store}
}

func (t *Generic) Locale() string {
	return t.locale
}

func (t *Generic) Translate(ctx context.Context, key string, vars map[string]string) string {
	value, err := t.Translation(ctx, key)
	if err != nil {
		log.Warn().
			Err(err).
			Str("sys", "translator").
			Str("locale", t.locale).
			Str("key", key).
			Msg("Failed to look up translation")
	}

	if value == nil {
		return translation.Placeholder(key)
	}

	return substitute(*value, vars)
}

func (t *Generic) Translation(ctx context.Context, key string) (*string, error) {
	value, err := t.store.Get(ctx, t.locale, key)
	if errors.Is(err, translation.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &value, nil
}

func (t *Generic) SetTranslation(ctx context.Context, key, value string) error {
	if err := translation.ValidateKey(key); err != nil {
		return err
	}

	return t.store.Set(ctx, t.locale, key, value)
}

// Inline renders translated text inside an inline translation marker:
//
//	<mark title="key" class="inline_translation" data-translation-key="key" data-locale="en">text</mark>
//
// Attribute values are escaped. The text is emitted as stored, like Generic.
type Inline struct {
	*Generic
}

var _ Translator = (*Inline)(nil)

func NewInline(locale string, store translation.Store) *Inline {
	return &Inline{Generic: NewGeneric(locale, store)}
}

func (t *Inline) Translate(ctx context.Context, key string, vars map[string]string) string {
	return Mark(key, t.locale, t.Generic.Translate(ctx, key, vars))
}

// Mark wraps text in the marker element for key and locale.
func Mark(key, locale, text string) string {
	attrKey := html.EscapeString(key)

	var b strings.Builder

	b.Grow(len(text) + 2*len(attrKey) + len(locale) + 96)
	b.WriteString(`<mark title="`)
	b.WriteString(attrKey)
	b.WriteString(`" class="inline_translation" data-translation-key="`)
	b.WriteString(attrKey)
	b.WriteString(`" data-locale="`)
	b.WriteString(html.EscapeString(locale))
	b.WriteString(`">`)
	b.WriteString(text)
	b.WriteString(`</mark>`)

	return b.String()
}

func substitute(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "%") {
		return text
	}

	pairs := make([]string, 0, 2*len(vars))
	for name, value := range vars {
		pairs = append(pairs, "%"+name+"%", value)
	}

	return strings.NewReplacer(pairs...).Replace(text)
}
