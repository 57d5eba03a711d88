// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package sqlitestore keeps translations and user preferences in an SQLite
database using the pure Go modernc.org/sqlite driver, in WAL mode.
*/
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	locale     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (locale, key)
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_name  TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (user_name, name)
);
`

var errEmptyPath = errors.New("sqlite database path is empty")

// Store is an SQLite-backed translation.Store and preference.Store.
type Store struct {
	db *sql.DB
}

var (
	_ translation.Store = (*Store)(nil)
	_ preference.Store  = (*Store)(nil)
)

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errEmptyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("failed to exec %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, locale, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM translations WHERE locale = ? AND key = ?`, locale, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", translation.ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get translation %s/%s: %w", locale, key, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, locale, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (locale, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (locale, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		locale, key, value, now())
	if err != nil {
		return fmt.Errorf("failed to set translation %s/%s: %w", locale, key, err)
	}

	return nil
}

func (s *Store) All(ctx context.Context, locale string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM translations WHERE locale = ?`, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations for %s: %w", locale, err)
	}
	defer rows.Close()

	values := make(map[string]string)

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan translation row: %w", err)
		}

		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate translations for %s: %w", locale, err)
	}

	return values, nil
}

func (s *Store) Preference(ctx context.Context, user, name string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_preferences WHERE user_name = ? AND name = ?`, user, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s for %s: %w", name, user, err)
	}

	return value, true, nil
}

func (s *Store) SetPreference(ctx context.Context, user, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_name, name, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_name, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		user, name, value, now())
	if err != nil {
		return fmt.Errorf("failed to set preference %s for %s: %w", name, user, err)
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
