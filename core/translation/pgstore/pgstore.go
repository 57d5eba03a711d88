// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pgstore keeps translations and user preferences in PostgreSQL.

Open applies the embedded schema migrations with golang-migrate before
returning a store backed by a pgx connection pool.
*/
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the "postgres" migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

//go:embed migrations/*.sql
var migrations embed.FS

var errEmptyDSN = errors.New("postgres DSN is empty")

// Store is a PostgreSQL-backed translation.Store and preference.Store.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ translation.Store = (*Store)(nil)
	_ preference.Store  = (*Store)(nil)
)

// Open migrates the database at dsn and connects a pool to it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errEmptyDSN
	}

	if err := Migrate(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info().Str("sys", "pgstore").Msg("Connected to PostgreSQL")

	return &Store{pool: pool}, nil
}

// Migrate applies every pending embedded migration to the database at dsn.
func Migrate(dsn string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().
		Str("sys", "pgstore").
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations applied")

	return nil
}

func (s *Store) Get(ctx context.Context, locale, key string) (string, error) {
	var value string

	err := s.pool.QueryRow(ctx,
		`SELECT value FROM translations WHERE locale = $1 AND key = $2`, locale, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", translation.ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get translation %s/%s: %w", locale, key, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, locale, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO translations (locale, key, value, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (locale, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		locale, key, value)
	if err != nil {
		return fmt.Errorf("failed to set translation %s/%s: %w", locale, key, err)
	}

	return nil
}

func (s *Store) All(ctx context.Context, locale string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM translations WHERE locale = $1`, locale)
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

	err := s.pool.QueryRow(ctx,
		`SELECT value FROM user_preferences WHERE user_name = $1 AND name = $2`, user, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s for %s: %w", name, user, err)
	}

	return value, true, nil
}

func (s *Store) SetPreference(ctx context.Context, user, name, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_name, name, value, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (user_name, name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		user, name, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s for %s: %w", name, user, err)
	}

	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()

	return nil
}
