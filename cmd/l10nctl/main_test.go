// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/storage"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/server/router"
)

func TestRun(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.ErrorIs(t, run(t.Context(), nil, &out), errUsage)
	require.ErrorIs(t, run(t.Context(), []string{"translate"}, &out), errUnknownCommand)

	require.NoError(t, run(t.Context(), []string{"help"}, &out))
	for _, c := range commands {
		assert.Contains(t, out.String(), c.name)
	}
}

func TestKeygen(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{"keygen"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	secret, ok := strings.CutPrefix(lines[0], "secret: ")
	require.True(t, ok)

	public, ok := strings.CutPrefix(lines[1], "public: ")
	require.True(t, ok)

	authority, err := security.NewAuthority(secret)
	require.NoError(t, err)
	assert.Equal(t, authority.PublicKeyHex(), public)
}

func TestToken(t *testing.T) {
	t.Parallel()

	secret := security.NewSecretKeyHex()

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{
		"token", "-secret", secret, "-name", "ada",
		"-permission", "/l10n**", "-permission", "/docs/*", "-ttl", "1h",
	}, &out))

	authority, err := security.NewAuthority(secret)
	require.NoError(t, err)

	user, err := authority.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Name)
	assert.Equal(t, []string{"/l10n**", "/docs/*"}, user.Permissions)
}

func TestTokenDefaults(t *testing.T) {
	t.Parallel()

	secret := security.NewSecretKeyHex()

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{"token", "-secret", secret, "-name", "ada"}, &out))

	authority, err := security.NewAuthority(secret)
	require.NoError(t, err)

	user, err := authority.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"/l10n**"}, user.Permissions)

	require.ErrorIs(t, run(t.Context(), []string{"token", "-secret", secret}, &out), errNameRequired)
}

// Uses t.Setenv and therefore does not run in parallel.
func TestImport(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("L10N_SECRET", security.NewSecretKeyHex())
	t.Setenv("L10N_LOCALES", "en,nl")
	t.Setenv("L10N_STORAGE_BACKEND", "file")
	t.Setenv("L10N_STORAGE_PATH", filepath.Join(dir, "translations"))
	t.Setenv("L10N_PREFERENCES_PATH", filepath.Join(dir, "preferences.json"))

	catalogues := filepath.Join(dir, "po")
	require.NoError(t, os.MkdirAll(catalogues, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(catalogues, "nl.po"), []byte(`msgid ""
msgstr ""
"Language: nl\n"

msgid "greeting.hello"
msgstr "Hallo"

msgid "app.title"
msgstr ""
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(catalogues, "fr.po"), []byte(`msgid "greeting.hello"
msgstr "Bonjour"
`), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{
		"import", "-config", filepath.Join(dir, "missing.yaml"),
		filepath.Join(catalogues, "nl.po"), filepath.Join(catalogues, "fr.po"),
	}, &out))

	assert.Contains(t, out.String(), "nl.po\tnl\timported 1\tskipped 0")
	assert.Contains(t, out.String(), "fr.po\tfr\timported 0\tskipped 1", "unconfigured locales are skipped")

	stores, err := storage.Open(t.Context(), storage.Options{
		Backend:         "file",
		Path:            filepath.Join(dir, "translations"),
		Format:          "json",
		PreferencesPath: filepath.Join(dir, "preferences.json"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	value, err := stores.Translations.Get(t.Context(), "nl", "greeting.hello")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", value)

	require.ErrorIs(t, run(t.Context(), []string{"import"}, &out), errNoFiles)
}

func newServer(t *testing.T) (*httptest.Server, *translation.Memory, string) {
	t.Helper()

	store := translation.NewMemory()

	manager, err := translator.NewManager(store, preference.NewMemory(), translator.Options{
		Locales:    []string{"en", "nl"},
		Permission: "/l10n**",
	})
	require.NoError(t, err)

	authority, err := security.NewAuthority(security.NewSecretKeyHex())
	require.NoError(t, err)

	token, err := authority.Issue(security.User{Name: "ada", Permissions: []string{"/l10n**"}}, time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(router.Options{
		Manager:    manager,
		Authority:  authority,
		BasePath:   "/api/v1/i18n",
		TogglePath: "/l10n/translator/toggle",
	}))
	t.Cleanup(srv.Close)

	return srv, store, token
}

const page = `<!DOCTYPE html><html><body>
<h1><span class="inline_translation" data-translation-key="app.title" data-locale="nl">Inline vertaler</span></h1>
<p><span class="inline_translation" data-translation-key="greeting.hello" data-locale="nl">[greeting.hello]</span></p>
</body></html>`

func writePage(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	return path
}

func TestEdit(t *testing.T) {
	srv, store, token := newServer(t)
	path := writePage(t)

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{
		"edit", "-api", srv.URL + "/api/v1/i18n", "-token", token,
		"-key", "greeting.hello", "-set", "nl=Hallo", "-set", "en=Hello",
		path,
	}, &out))

	assert.Equal(t, "greeting.hello\tHallo\n", out.String())

	value, err := store.Get(t.Context(), "en", "greeting.hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", value)
}

func TestEditList(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, run(t.Context(), []string{"edit", "-list", writePage(t)}, &out))

	assert.Equal(t, "app.title\tnl\tInline vertaler\ngreeting.hello\tnl\t[greeting.hello]\n", out.String())
}

func TestEditErrors(t *testing.T) {
	srv, _, token := newServer(t)
	path := writePage(t)
	api := srv.URL + "/api/v1/i18n"

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no page", []string{"edit", "-api", api, "-key", "app.title"}, errPageArg},
		{"no api", []string{"edit", "-key", "app.title", path}, errAPIRequired},
		{"no key", []string{"edit", "-api", api, path}, errKeyRequired},
		{"bad set", []string{"edit", "-api", api, "-key", "app.title", "-set", "nl", path}, errBadSet},
		{"unknown locale", []string{"edit", "-api", api, "-token", token, "-key", "app.title", "-set", "fr=x", path}, translation.ErrUnknownLocale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.ErrorIs(t, run(t.Context(), tt.args, &out), tt.want)
		})
	}
}
