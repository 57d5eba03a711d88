// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package filestore keeps translations in one flat file per locale:

	<dir>/<locale>.json
	<dir>/<locale>.yaml

Each file maps translation keys to values. Files are read when the store is
opened and rewritten atomically (temporary file + rename) on every Set.
*/
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

// Format is the on-disk encoding of locale files.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"

	dirPermissions  = 0o750
	filePermissions = 0o640
)

var errUnsupportedFormat = errors.New("unsupported file store format")

// Store is a file-backed translation.Store.
type Store struct {
	dir    string
	format Format
	logger zerolog.Logger

	mu      sync.RWMutex
	catalog map[string]map[string]string // locale -> key -> value
}

var _ translation.Store = (*Store)(nil)

// Open loads every locale file of the given format found in dir, creating dir if needed.
func Open(ctx context.Context, dir string, format Format) (*Store, error) {
	if format != JSON && format != YAML {
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create translation directory %s: %w", dir, err)
	}

	s := &Store{
		dir:     dir,
		format:  format,
		logger:  log.With().Str("sys", "filestore").Logger(),
		catalog: make(map[string]map[string]string),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation directory %s: %w", dir, err)
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != "."+string(format) {
			continue
		}

		locale, err := translation.CanonicalLocale(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Skipping invalid locale file")

			continue
		}

		g.Go(func() error {
			values, err := s.readFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}

			mu.Lock()
			s.catalog[locale] = values
			mu.Unlock()

			s.logger.Debug().
				Str("locale", locale).
				Int("count", len(values)).
				Msg("Loaded locale file")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) Get(_ context.Context, locale, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.catalog[locale][key]
	if !ok {
		return "", translation.ErrNotFound
	}

	return value, nil
}

// Set stores value and rewrites the locale file. The in-memory catalogue is
// only updated once the file has been written.
func (s *Store) Set(_ context.Context, locale, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := maps.Clone(s.catalog[locale])
	if values == nil {
		values = make(map[string]string)
	}

	values[key] = value

	if err := s.writeFile(locale, values); err != nil {
		return err
	}

	s.catalog[locale] = values

	return nil
}

func (s *Store) All(_ context.Context, locale string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.catalog[locale]), nil
}

func (s *Store) Close() error { return nil }

func (s *Store) path(locale string) string {
	return filepath.Join(s.dir, locale+"."+string(s.format))
}

func (s *Store) readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the configured translation directory
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := make(map[string]string)

	if len(data) == 0 {
		return values, nil
	}

	switch s.format {
	case JSON:
		err = json.Unmarshal(data, &values)
	case YAML:
		err = yaml.Unmarshal(data, &values)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return values, nil
}

func (s *Store) writeFile(locale string, values map[string]string) error {
	var (
		data []byte
		err  error
	)

	switch s.format {
	case JSON:
		data, err = json.MarshalIndent(values, "", "  ")
	case YAML:
		data, err = yaml.Marshal(values)
	}

	if err != nil {
		return fmt.Errorf("failed to encode locale %s: %w", locale, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+locale+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); !errors.Is(statErr, fs.ErrNotExist) {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path(locale)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path(locale), err)
	}

	return nil
}
