// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/core/translation"
)

func TestStorePersists(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			dir := t.TempDir()

			store, err := Open(ctx, dir, format)
			require.NoError(t, err)

			_, err = store.Get(ctx, "en", "greeting.hello")
			require.ErrorIs(t, err, translation.ErrNotFound)

			require.NoError(t, store.Set(ctx, "en", "greeting.hello", "Hello!"))
			require.NoError(t, store.Set(ctx, "nl", "greeting.hello", "Hallo!"))

			assert.FileExists(t, filepath.Join(dir, "en."+string(format)))

			reopened, err := Open(ctx, dir, format)
			require.NoError(t, err)

			got, err := reopened.Get(ctx, "nl", "greeting.hello")
			require.NoError(t, err)
			assert.Equal(t, "Hallo!", got)

			all, err := reopened.All(ctx, "en")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"greeting.hello": "Hello!"}, all)
		})
	}
}

func TestOpenSkipsForeignFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"app.title":"Title"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not a locale.json"), []byte(`{}`), 0o600))

	store, err := Open(context.Background(), dir, JSON)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "en", "app.title")
	require.NoError(t, err)
	assert.Equal(t, "Title", got)
}

func TestOpenRejectsBrokenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{broken`), 0o600))

	_, err := Open(context.Background(), dir, JSON)
	assert.Error(t, err)
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), t.TempDir(), Format("xml"))
	assert.ErrorIs(t, err, errUnsupportedFormat)
}
