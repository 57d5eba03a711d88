// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog imports existing message catalogues into a translation store.

Two formats are understood:

  - gettext .po files, named <locale>.po; every translated msgid becomes a key
  - go-i18n TOML files, named <anything>.<locale>.toml or <locale>.toml; nested
    tables become dot-delimited keys

Entries whose id is not a valid translation key are skipped, as are entries
that already have a value unless Overwrite is set.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

const maxConcurrentFiles = 4

var errUnsupportedFile = errors.New("unsupported catalogue file")

// Result summarises the import of one file.
type Result struct {
	File     string
	Locale   string
	Imported int
	Skipped  int
}

// Importer copies catalogue entries into a store.
type Importer struct {
	Store     translation.Store
	Overwrite bool

	// Locales, when non-empty, restricts the import to these canonical codes.
	Locales []string

	Logger zerolog.Logger
}

type entry struct {
	key   string
	value string
}

// ImportFS imports every named file of fsys concurrently. Results keep the order of names.
func (im *Importer) ImportFS(ctx context.Context, fsys fs.FS, names ...string) ([]Result, error) {
	results := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)

	for i, name := range names {
		g.Go(func() error {
			res, err := im.importFile(gctx, fsys, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (im *Importer) importFile(ctx context.Context, fsys fs.FS, name string) (Result, error) {
	var (
		locale  string
		entries []entry
		err     error
	)

	switch path.Ext(name) {
	case ".po":
		locale, entries, err = readPo(fsys, name)
	case ".toml":
		locale, entries, err = readTOML(fsys, name)
	default:
		return Result{}, errUnsupportedFile
	}

	if err != nil {
		return Result{}, err
	}

	return im.write(ctx, name, locale, entries)
}

func (im *Importer) write(ctx context.Context, name, locale string, entries []entry) (Result, error) {
	res := Result{File: name, Locale: locale}

	if len(im.Locales) > 0 && !slices.Contains(im.Locales, locale) {
		im.Logger.Warn().Str("file", name).Str("locale", locale).Msg("Skipping catalogue for unconfigured locale")

		res.Skipped = len(entries)

		return res, nil
	}

	existing := map[string]string{}

	if !im.Overwrite {
		var err error

		existing, err = im.Store.All(ctx, locale)
		if err != nil {
			return res, err
		}
	}

	for _, e := range entries {
		if translation.ValidateKey(e.key) != nil {
			res.Skipped++

			continue
		}

		if _, ok := existing[e.key]; ok {
			res.Skipped++

			continue
		}

		if err := im.Store.Set(ctx, locale, e.key, e.value); err != nil {
			return res, err
		}

		res.Imported++
	}

	im.Logger.Info().
		Str("file", name).
		Str("locale", locale).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("Imported catalogue")

	return res, nil
}

func readPo(fsys fs.FS, name string) (string, []entry, error) {
	locale, err := translation.CanonicalLocale(strings.TrimSuffix(path.Base(name), ".po"))
	if err != nil {
		return "", nil, err
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", nil, err
	}

	po := gotext.NewPo()
	po.Parse(data)

	var entries []entry

	for id, tr := range po.GetDomain().GetTranslations() {
		if id == "" || !tr.IsTranslated() {
			continue
		}

		entries = append(entries, entry{key: id, value: tr.Get()})
	}

	return locale, entries, nil
}

func readTOML(fsys fs.FS, name string) (string, []entry, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	mf, err := bundle.LoadMessageFileFS(fsys, name)
	if err != nil {
		return "", nil, err
	}

	if mf.Tag == language.Und {
		return "", nil, fmt.Errorf("%w: no locale in file name", translation.ErrUnknownLocale)
	}

	entries := make([]entry, 0, len(mf.Messages))

	for _, msg := range mf.Messages {
		if msg.Other == "" {
			continue
		}

		entries = append(entries, entry{key: msg.ID, value: msg.Other})
	}

	return mf.Tag.String(), entries, nil
}
