// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package storage opens the translation and preference stores of a backend.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/core/translation/filestore"
	"codeberg.org/ride/inlinetranslator/core/translation/lrucache"
	"codeberg.org/ride/inlinetranslator/core/translation/pgstore"
	"codeberg.org/ride/inlinetranslator/core/translation/sqlitestore"
)

var errUnknownBackend = errors.New("unknown storage backend")

// Options selects and configures a backend.
type Options struct {
	// Backend is one of memory, file, sqlite or postgres.
	Backend string

	Path            string
	DSN             string
	Format          string
	PreferencesPath string

	Cache         bool
	CacheSize     int
	CacheCompress bool
}

// Stores holds the opened stores.
type Stores struct {
	Translations translation.Store
	Preferences  preference.Store
}

// Open opens the stores described by opts.
//
// For the memory and file backends preferences live in a JSON file at
// PreferencesPath, or in memory when it is empty. The database backends keep
// both in the same database.
func Open(ctx context.Context, opts Options) (*Stores, error) {
	logger := log.With().Str("sys", "storage").Str("backend", opts.Backend).Logger()

	stores := &Stores{}

	switch opts.Backend {
	case "memory":
		stores.Translations = translation.NewMemory()

	case "file":
		store, err := filestore.Open(ctx, opts.Path, filestore.Format(opts.Format))
		if err != nil {
			return nil, err
		}

		stores.Translations = store

	case "sqlite":
		store, err := sqlitestore.Open(ctx, opts.Path)
		if err != nil {
			return nil, err
		}

		stores.Translations = store
		stores.Preferences = store

	case "postgres":
		if err := pgstore.Migrate(opts.DSN); err != nil {
			return nil, err
		}

		store, err := pgstore.Open(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}

		stores.Translations = store
		stores.Preferences = store

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, opts.Backend)
	}

	if stores.Preferences == nil {
		prefs, err := openPreferences(opts.PreferencesPath)
		if err != nil {
			_ = stores.Translations.Close()

			return nil, err
		}

		stores.Preferences = prefs
	}

	if opts.Cache {
		cached, err := lrucache.Wrap(stores.Translations, opts.CacheSize, opts.CacheCompress)
		if err != nil {
			_ = stores.Translations.Close()

			return nil, err
		}

		stores.Translations = cached
	}

	logger.Info().
		Bool("cache", opts.Cache).
		Msg("Opened translation storage")

	return stores, nil
}

func openPreferences(path string) (*preference.Memory, error) {
	if path == "" {
		return preference.NewMemory(), nil
	}

	return preference.OpenFile(path)
}

// Close closes the translation store, which also owns database preferences.
func (s *Stores) Close() error {
	return s.Translations.Close()
}
