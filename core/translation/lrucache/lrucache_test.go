// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lrucache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(0, false)
	require.ErrorIs(t, err, ErrInvalidSize)

	cache, err := New(3, true)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestEviction(t *testing.T) {
	t.Parallel()

	cache, err := New(2, false)
	require.NoError(t, err)

	assert.False(t, cache.Add("a", "1"))
	assert.False(t, cache.Add("b", "2"))

	// Touch "a" so "b" becomes the oldest.
	_, _, found := cache.Get("a")
	require.True(t, found)

	assert.True(t, cache.Add("c", "3"))
	assert.Equal(t, []string{"a", "c"}, cache.Keys())

	_, _, found = cache.Get("b")
	assert.False(t, found)
}

func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := New(4, true)
	require.NoError(t, err)

	long := strings.Repeat("Hallo wereld! ", 200)
	cache.Add("long", long)
	cache.Add("short", "x")
	cache.Add("empty", "")

	for key, want := range map[string]string{"long": long, "short": "x", "empty": ""} {
		got, missing, found := cache.Get(key)
		require.True(t, found, key)
		assert.False(t, missing, key)
		assert.Equal(t, want, got, key)
	}

	el := cache.items["long"]
	assert.True(t, el.Value.(*entry).compressed)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache, err := New(50, true)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range 200 {
				key := strconv.Itoa((i*200 + j) % 80)
				cache.Add(key, strings.Repeat(key, 40))
				cache.Get(key)
			}
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 50)
}

// countingStore counts Get calls reaching the backing store.
type countingStore struct {
	*translation.Memory

	gets int
	fail error
}

func (s *countingStore) Get(ctx context.Context, locale, key string) (string, error) {
	s.gets++

	return s.Memory.Get(ctx, locale, key)
}

func (s *countingStore) Set(ctx context.Context, locale, key, value string) error {
	if s.fail != nil {
		return s.fail
	}

	return s.Memory.Set(ctx, locale, key, value)
}

func TestStoreReadThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Memory: translation.NewMemory()}
	require.NoError(t, backing.Memory.Set(ctx, "en", "app.title", "Title"))

	store, err := Wrap(backing, 10, true)
	require.NoError(t, err)

	for range 3 {
		got, err := store.Get(ctx, "en", "app.title")
		require.NoError(t, err)
		assert.Equal(t, "Title", got)
	}

	assert.Equal(t, 1, backing.gets)

	// Misses are cached too.
	for range 2 {
		_, err := store.Get(ctx, "nl", "app.title")
		require.ErrorIs(t, err, translation.ErrNotFound)
	}

	assert.Equal(t, 2, backing.gets)

	require.NoError(t, store.Set(ctx, "nl", "app.title", "Titel"))

	got, err := store.Get(ctx, "nl", "app.title")
	require.NoError(t, err)
	assert.Equal(t, "Titel", got)
	assert.Equal(t, 2, backing.gets)
}

func TestStoreFailedWriteDropsCachedValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Memory: translation.NewMemory()}
	require.NoError(t, backing.Memory.Set(ctx, "en", "k", "old"))

	store, err := Wrap(backing, 10, false)
	require.NoError(t, err)

	_, err = store.Get(ctx, "en", "k")
	require.NoError(t, err)

	backing.fail = assert.AnError
	require.ErrorIs(t, store.Set(ctx, "en", "k", "new"), assert.AnError)

	got, err := store.Get(ctx, "en", "k")
	require.NoError(t, err)
	assert.Equal(t, "old", got)
	assert.Equal(t, 2, backing.gets)
}
