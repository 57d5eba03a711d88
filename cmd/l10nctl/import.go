// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/catalog"
	"codeberg.org/ride/inlinetranslator/core/storage"
)

var errNoFiles = errors.New("import: no catalogue files given")

// runImport copies catalogue files into the configured store. Only the
// configured locales are imported.
func runImport(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := newFlagSet("import")
	configPath := fs.String("config", "", "configuration file")
	overwrite := fs.Bool("overwrite", false, "replace values that are already stored")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return errNoFiles
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	stores, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	importer := &catalog.Importer{
		Store:     stores.Translations,
		Overwrite: *overwrite,
		Locales:   cfg.Locales.Available,
		Logger:    log.With().Str("sys", "import").Logger(),
	}

	// Catalogue names carry the locale, so files are grouped by directory.
	byDir := map[string][]string{}
	var dirs []string

	for _, file := range fs.Args() {
		dir := filepath.Dir(file)
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}

		byDir[dir] = append(byDir[dir], filepath.Base(file))
	}

	for _, dir := range dirs {
		results, err := importer.ImportFS(ctx, os.DirFS(dir), byDir[dir]...)
		if err != nil {
			return err
		}

		for _, res := range results {
			fmt.Fprintf(stdout, "%s\t%s\timported %d\tskipped %d\n",
				filepath.Join(dir, res.File), res.Locale, res.Imported, res.Skipped)
		}
	}

	return nil
}
