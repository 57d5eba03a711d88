// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

func newTestManager(t *testing.T) (*Manager, *translation.Memory, *preference.Memory) {
	t.Helper()

	store := translation.NewMemory()
	prefs := preference.NewMemory()

	m, err := NewManager(store, prefs, Options{
		Locales:    []string{"en", "nl", "pt_BR"},
		Permission: "/l10n",
	})
	require.NoError(t, err)

	return m, store, prefs
}

func TestGenericTranslate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := translation.NewMemory()
	require.NoError(t, store.Set(ctx, "en", "greeting.named", "Hello %name%!"))

	tr := NewGeneric("en", store)

	assert.Equal(t, "[greeting.hello]", tr.Translate(ctx, "greeting.hello", nil))
	assert.Equal(t, "Hello Ada!", tr.Translate(ctx, "greeting.named", map[string]string{"name": "Ada"}))

	value, err := tr.Translation(ctx, "greeting.hello")
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.ErrorIs(t, tr.SetTranslation(ctx, "bad key", "x"), translation.ErrInvalidKey)
}

func TestInlineTranslate(t *testing.T) {
	t.Parallel()

	tr := NewInline("en", translation.NewMemory())

	assert.Equal(t,
		`<mark title="greeting.hello" class="inline_translation" data-translation-key="greeting.hello" data-locale="en">[greeting.hello]</mark>`,
		tr.Translate(context.Background(), "greeting.hello", nil))
}

func TestMarkEscapesAttributes(t *testing.T) {
	t.Parallel()

	got := Mark(`a"b`, "en", "text")
	assert.Contains(t, got, `data-translation-key="a&#34;b"`)
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	_, err := NewManager(translation.NewMemory(), preference.NewMemory(), Options{})
	require.ErrorIs(t, err, errNoLocales)

	_, err = NewManager(translation.NewMemory(), preference.NewMemory(), Options{
		Locales:       []string{"en"},
		DefaultLocale: "fr",
	})
	require.ErrorIs(t, err, translation.ErrUnknownLocale)

	m, _, _ := newTestManager(t)

	codes := make([]string, 0, 3)
	for _, loc := range m.Locales() {
		codes = append(codes, loc.Code)
	}

	assert.Equal(t, []string{"en", "nl", "pt-BR"}, codes)
	assert.Equal(t, "en", m.Default().Code)
	assert.Equal(t, "Nederlands", m.Locales()[1].Name)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)

	assert.Equal(t, "nl", m.Match(language.MustParse("nl-BE")).Code)
	assert.Equal(t, "pt-BR", m.Match(language.MustParse("pt-BR")).Code)
	assert.Equal(t, "en", m.Match(language.Japanese).Code)
	assert.Equal(t, "en", m.Match().Code)
}

func TestTranslatorSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, _ := newTestManager(t)

	translatorUser := &security.User{Name: "alice", Permissions: []string{"/l10n**"}}
	visitor := &security.User{Name: "bob"}

	tr, err := m.Translator(ctx, "en", translatorUser)
	require.NoError(t, err)
	assert.IsType(t, &Generic{}, tr)

	_, err = m.Toggle(ctx, translatorUser)
	require.NoError(t, err)

	tr, err = m.Translator(ctx, "en", translatorUser)
	require.NoError(t, err)
	assert.IsType(t, &Inline{}, tr)

	// Translator mode alone is not enough without permission.
	_, err = m.Toggle(ctx, visitor)
	require.NoError(t, err)

	tr, err = m.Translator(ctx, "en", visitor)
	require.NoError(t, err)
	assert.IsType(t, &Generic{}, tr)

	tr, err = m.Translator(ctx, "en", nil)
	require.NoError(t, err)
	assert.IsType(t, &Generic{}, tr)

	_, err = m.Translator(ctx, "fr", nil)
	assert.ErrorIs(t, err, translation.ErrUnknownLocale)
}

func TestVariantsReportMissingAsNull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store, _ := newTestManager(t)
	require.NoError(t, store.Set(ctx, "nl", "greeting.hello", "Hallo!"))

	variants, err := m.Variants(ctx, "greeting.hello")
	require.NoError(t, err)
	require.Len(t, variants, 3)

	assert.Nil(t, variants["en"].Translation)
	assert.Equal(t, "[greeting.hello]", variants["en"].Text())
	require.NotNil(t, variants["nl"].Translation)
	assert.Equal(t, "Hallo!", *variants["nl"].Translation)
	assert.Equal(t, "Nederlands", variants["nl"].Locale)
	assert.Equal(t, "greeting.hello", variants["pt-BR"].Key)

	_, err = m.Variants(ctx, "")
	assert.ErrorIs(t, err, translation.ErrInvalidKey)
}

func TestSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store, _ := newTestManager(t)

	got, err := m.Save(ctx, "en", "greeting.hello", map[string]string{"en": "Hello!", "nl": ""})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", got)

	_, err = store.Get(ctx, "nl", "greeting.hello")
	require.ErrorIs(t, err, translation.ErrNotFound, "empty values are skipped")

	// Saving the same values again resolves to the same text.
	again, err := m.Save(ctx, "en", "greeting.hello", map[string]string{"en": "Hello!"})
	require.NoError(t, err)
	assert.Equal(t, got, again)

	got, err = m.Save(ctx, "nl", "greeting.hello", map[string]string{"en": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "[greeting.hello]", got)
}

func TestSaveRejectsUnknownLocaleBeforeWriting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store, _ := newTestManager(t)

	_, err := m.Save(ctx, "en", "k", map[string]string{"en": "x", "fr": "y"})
	require.ErrorIs(t, err, translation.ErrUnknownLocale)

	_, err = store.Get(ctx, "en", "k")
	assert.ErrorIs(t, err, translation.ErrNotFound)

	_, err = m.Save(ctx, "de", "k", map[string]string{"en": "x"})
	assert.ErrorIs(t, err, translation.ErrUnknownLocale)
}

func TestToggleRequiresUser(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)

	_, err := m.Toggle(context.Background(), nil)
	assert.ErrorIs(t, err, security.ErrUnauthenticated)
}
