// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// maxKeyLength bounds keys so they fit comfortably in a URL path segment and a database index.
const maxKeyLength = 255

var (
	// ErrNotFound is returned by Store.Get when no value is stored for (locale, key).
	ErrNotFound = errors.New("translation not found")

	// ErrInvalidKey is returned for keys that cannot be stored or routed.
	ErrInvalidKey = errors.New("invalid translation key")

	// ErrUnknownLocale is returned for locales that are malformed or not configured.
	ErrUnknownLocale = errors.New("unknown locale")
)

// Store persists translation values keyed by (locale, key).
//
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, locale, key string) (string, error)

	// Set stores value, replacing any previous value.
	Set(ctx context.Context, locale, key, value string) error

	// All returns every stored key/value pair for locale.
	All(ctx context.Context, locale string) (map[string]string, error)

	// Close releases resources held by the store.
	Close() error
}

// LocaleVariant is one locale's view of a translation key.
//
// Translation is nil when no value is stored for the locale.
type LocaleVariant struct {
	Key         string  `json:"key"`
	Code        string  `json:"code"`
	Locale      string  `json:"locale"`
	Translation *string `json:"translation"`
}

// Text returns the stored translation, or the placeholder for the key when there is none.
func (v LocaleVariant) Text() string {
	if v.Translation == nil {
		return Placeholder(v.Key)
	}

	return *v.Translation
}

// Placeholder is the text rendered for a key that has no stored value.
func Placeholder(key string) string {
	return "[" + key + "]"
}

// IsPlaceholder reports whether text is the placeholder of key.
func IsPlaceholder(key, text string) bool {
	return text == Placeholder(key)
}

// ValidateKey checks that key is usable as a translation key.
//
// Keys must be non-empty, at most 255 bytes, and contain no slashes,
// whitespace or control characters.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, maxKeyLength)
	}

	if strings.ContainsRune(key, '/') {
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidKey, key)
	}

	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidKey, key)
		}
	}

	return nil
}

// CanonicalLocale parses locale as a BCP 47 tag and returns its canonical form.
// Underscores are accepted in place of hyphens, so "pt_BR" becomes "pt-BR".
func CanonicalLocale(locale string) (string, error) {
	if locale == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownLocale)
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrUnknownLocale, locale, err)
	}

	return tag.String(), nil
}
