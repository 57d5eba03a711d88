// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "l10n.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestTranslations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Get(ctx, "en", "app.title")
	require.ErrorIs(t, err, translation.ErrNotFound)

	require.NoError(t, store.Set(ctx, "en", "app.title", "Title"))
	require.NoError(t, store.Set(ctx, "en", "app.title", "Better title"))
	require.NoError(t, store.Set(ctx, "nl", "app.title", "Titel"))

	got, err := store.Get(ctx, "en", "app.title")
	require.NoError(t, err)
	assert.Equal(t, "Better title", got)

	all, err := store.All(ctx, "nl")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app.title": "Titel"}, all)
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	enabled, err := preference.Toggle(ctx, store, "alice", preference.TranslatorMode)
	require.NoError(t, err)
	assert.True(t, enabled)

	value, ok, err := store.Preference(ctx, "alice", preference.TranslatorMode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	_, ok, err = store.Preference(ctx, "bob", preference.TranslatorMode)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "  ")
	assert.ErrorIs(t, err, errEmptyPath)
}
