// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lrucache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

// Store is a read-through cache in front of a translation.Store.
//
// Get answers from the cache when it can, including cached misses. Set writes
// through to the backing store and refreshes the cached value only once the
// write succeeded. All always reads the backing store.
type Store struct {
	next  translation.Store
	cache *Cache
}

var _ translation.Store = (*Store)(nil)

// Wrap returns next wrapped in a cache of size entries.
func Wrap(next translation.Store, size int, compress bool) (*Store, error) {
	cache, err := New(size, compress)
	if err != nil {
		return nil, err
	}

	return &Store{next: next, cache: cache}, nil
}

func cacheKey(locale, key string) string {
	return locale + "\x00" + key
}

func (s *Store) Get(ctx context.Context, locale, key string) (string, error) {
	ck := cacheKey(locale, key)

	if value, missing, found := s.cache.Get(ck); found {
		if missing {
			return "", translation.ErrNotFound
		}

		return value, nil
	}

	value, err := s.next.Get(ctx, locale, key)

	switch {
	case errors.Is(err, translation.ErrNotFound):
		s.cache.AddMissing(ck)

		return "", err
	case err != nil:
		return "", err
	}

	if s.cache.Add(ck, value) {
		log.Debug().Str("sys", "lrucache").Msg("Evicted oldest translation")
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, locale, key, value string) error {
	ck := cacheKey(locale, key)

	if err := s.next.Set(ctx, locale, key, value); err != nil {
		s.cache.Remove(ck)

		return err
	}

	s.cache.Add(ck, value)

	return nil
}

func (s *Store) All(ctx context.Context, locale string) (map[string]string, error) {
	return s.next.All(ctx, locale)
}

// Unwrap returns the backing store.
func (s *Store) Unwrap() translation.Store {
	return s.next
}

// Close purges the cache and closes the backing store.
func (s *Store) Close() error {
	s.cache.Purge()

	return s.next.Close()
}
