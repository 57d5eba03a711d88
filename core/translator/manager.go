// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

var errNoLocales = errors.New("at least one locale must be configured")

// Locale is a configured locale.
type Locale struct {
	Code string       `json:"code"`
	Name string       `json:"name"`
	Tag  language.Tag `json:"-"`
}

// Options configure a Manager.
type Options struct {
	Locales       []string
	DefaultLocale string

	// Permission is the path a user must be allowed to reach to edit translations.
	Permission string

	Logger zerolog.Logger
}

// Manager owns the configured locales and hands out translators.
type Manager struct {
	store      translation.Store
	prefs      preference.Store
	locales    []Locale
	byCode     map[string]Locale
	fallback   Locale
	matcher    language.Matcher
	permission string
	logger     zerolog.Logger
}

// NewManager validates the locale list. The default locale falls back to the
// first configured locale when empty.
func NewManager(store translation.Store, prefs preference.Store, opts Options) (*Manager, error) {
	if len(opts.Locales) == 0 {
		return nil, errNoLocales
	}

	m := &Manager{
		store:      store,
		prefs:      prefs,
		byCode:     make(map[string]Locale, len(opts.Locales)),
		permission: opts.Permission,
		logger:     opts.Logger.With().Str("sys", "translator").Logger(),
	}

	tags := make([]language.Tag, 0, len(opts.Locales))

	for _, raw := range opts.Locales {
		code, err := translation.CanonicalLocale(raw)
		if err != nil {
			return nil, err
		}

		if _, dup := m.byCode[code]; dup {
			continue
		}

		tag := language.MustParse(code)
		loc := Locale{Code: code, Name: display.Self.Name(tag), Tag: tag}

		m.locales = append(m.locales, loc)
		m.byCode[code] = loc
		tags = append(tags, tag)
	}

	m.matcher = language.NewMatcher(tags)
	m.fallback = m.locales[0]

	if opts.DefaultLocale != "" {
		loc, err := m.Locale(opts.DefaultLocale)
		if err != nil {
			return nil, fmt.Errorf("default locale: %w", err)
		}

		m.fallback = loc
	}

	return m, nil
}

// Locales returns the configured locales in configuration order.
func (m *Manager) Locales() []Locale {
	return slices.Clone(m.locales)
}

// Default returns the default locale.
func (m *Manager) Default() Locale {
	return m.fallback
}

// Locale looks up a configured locale. Unconfigured or malformed codes yield
// translation.ErrUnknownLocale.
func (m *Manager) Locale(code string) (Locale, error) {
	canonical, err := translation.CanonicalLocale(code)
	if err != nil {
		return Locale{}, err
	}

	loc, ok := m.byCode[canonical]
	if !ok {
		return Locale{}, fmt.Errorf("%w: %s", translation.ErrUnknownLocale, canonical)
	}

	return loc, nil
}

// Match picks the configured locale closest to the preferred tags, or the
// default locale when nothing matches.
func (m *Manager) Match(preferred ...language.Tag) Locale {
	if len(preferred) == 0 {
		return m.fallback
	}

	_, index, confidence := m.matcher.Match(preferred...)
	if confidence == language.No {
		return m.fallback
	}

	return m.locales[index]
}

// Authorized reports whether user may edit translations.
func (m *Manager) Authorized(user *security.User) bool {
	return user.IsPathAllowed(m.permission)
}

// Enabled reports whether translator mode is switched on for user.
func (m *Manager) Enabled(ctx context.Context, user *security.User) (bool, error) {
	if user == nil {
		return false, nil
	}

	return preference.Bool(ctx, m.prefs, user.Name, preference.TranslatorMode)
}

// Toggle flips translator mode for user and returns the new state.
func (m *Manager) Toggle(ctx context.Context, user *security.User) (bool, error) {
	if user == nil {
		return false, security.ErrUnauthenticated
	}

	enabled, err := preference.Toggle(ctx, m.prefs, user.Name, preference.TranslatorMode)
	if err != nil {
		return false, err
	}

	m.logger.Info().
		Str("user", user.Name).
		Bool("enabled", enabled).
		Msg("Toggled translator mode")

	return enabled, nil
}

// Translator returns the translator for locale as seen by user. Authorized
// users with translator mode on get an Inline translator; everybody else gets
// a Generic one.
func (m *Manager) Translator(ctx context.Context, locale string, user *security.User) (Translator, error) {
	loc, err := m.Locale(locale)
	if err != nil {
		return nil, err
	}

	if user != nil && m.Authorized(user) {
		enabled, err := m.Enabled(ctx, user)
		if err != nil {
			m.logger.Warn().Err(err).Str("user", user.Name).Msg("Failed to read translator preference")
		}

		if enabled {
			return NewInline(loc.Code, m.store), nil
		}
	}

	return NewGeneric(loc.Code, m.store), nil
}

// Variants returns the variant of key for every configured locale.
// Locales without a stored value have a nil Translation.
func (m *Manager) Variants(ctx context.Context, key string) (map[string]translation.LocaleVariant, error) {
	if err := translation.ValidateKey(key); err != nil {
		return nil, err
	}

	values := make([]*string, len(m.locales))

	g, gctx := errgroup.WithContext(ctx)

	for i, loc := range m.locales {
		g.Go(func() error {
			value, err := NewGeneric(loc.Code, m.store).Translation(gctx, key)
			if err != nil {
				return fmt.Errorf("locale %s: %w", loc.Code, err)
			}

			values[i] = value

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	variants := make(map[string]translation.LocaleVariant, len(m.locales))
	for i, loc := range m.locales {
		variants[loc.Code] = translation.LocaleVariant{
			Key:         key,
			Code:        loc.Code,
			Locale:      loc.Name,
			Translation: values[i],
		}
	}

	return variants, nil
}

// Save stores the non-empty values for key and returns the text now resolved
// for locale. Every locale is validated before anything is written.
func (m *Manager) Save(ctx context.Context, locale, key string, values map[string]string) (string, error) {
	if err := translation.ValidateKey(key); err != nil {
		return "", err
	}

	target, err := m.Locale(locale)
	if err != nil {
		return "", err
	}

	writes := make(map[string]string, len(values))

	for code, value := range values {
		if value == "" {
			continue
		}

		loc, err := m.Locale(code)
		if err != nil {
			return "", err
		}

		writes[loc.Code] = value
	}

	for code, value := range writes {
		if err := m.store.Set(ctx, code, key, value); err != nil {
			return "", fmt.Errorf("failed to save %s/%s: %w", code, key, err)
		}
	}

	m.logger.Info().
		Str("key", key).
		Int("locales", len(writes)).
		Msg("Saved translations")

	value, err := NewGeneric(target.Code, m.store).Translation(ctx, key)
	if err != nil {
		return "", err
	}

	if value == nil {
		return translation.Placeholder(key), nil
	}

	return *value, nil
}
