// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/server/assets"
	"codeberg.org/ride/inlinetranslator/server/middleware/limiter"
)

type testServer struct {
	router     *Router
	store      *translation.Memory
	translator string // token holding the permission
	outsider   string // token without it
}

func newTestServer(t *testing.T, lim *limiter.Limiter) *testServer {
	t.Helper()

	assets.FS = fstest.MapFS{
		"assets/css/inline-translator.css": {Data: []byte(".inline_translation{}")},
	}

	store := translation.NewMemory()

	manager, err := translator.NewManager(store, preference.NewMemory(), translator.Options{
		Locales:    []string{"en", "nl"},
		Permission: "/l10n**",
	})
	require.NoError(t, err)

	authority, err := security.NewAuthority(security.NewSecretKeyHex())
	require.NoError(t, err)

	translatorToken, err := authority.Issue(security.User{Name: "ada", Permissions: []string{"/l10n**"}}, time.Hour)
	require.NoError(t, err)

	outsiderToken, err := authority.Issue(security.User{Name: "bob", Permissions: []string{"/blog/*"}}, time.Hour)
	require.NoError(t, err)

	return &testServer{
		router: New(Options{
			Manager:    manager,
			Authority:  authority,
			BasePath:   "/api/v1/i18n",
			TogglePath: "/l10n/translator/toggle",
			StyleURL:   "/css/inline-translator.css",
			Limiter:    lim,
		}),
		store:      store,
		translator: translatorToken,
		outsider:   outsiderToken,
	}
}

func (s *testServer) do(t *testing.T, method, target, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	return rr
}

func TestGetTranslation(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.store.Set(t.Context(), "en", "greeting.hello", "Hello"))

	rr := s.do(t, http.MethodGet, "/api/v1/i18n/translation/greeting.hello", s.translator, "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := rr.Body.String()
	assert.Equal(t, "Hello", gjson.Get(body, "en.translation").String())
	assert.Equal(t, "en", gjson.Get(body, "en.code").String())
	assert.Equal(t, "greeting.hello", gjson.Get(body, "nl.key").String())
	assert.Equal(t, gjson.Null, gjson.Get(body, "nl.translation").Type)
}

func TestAPIRequiresPermission(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/i18n/translation/app.title", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.True(t, gjson.Get(rr.Body.String(), "error").Bool())

	rr = s.do(t, http.MethodGet, "/api/v1/i18n/translation/app.title", s.outsider, "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPostTranslation(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("json", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/v1/i18n/translation/nl/greeting.hello", s.translator,
			"application/json", `{"translations":{"en":"Hello","nl":"Hallo","fr":""}}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Hallo", gjson.Get(rr.Body.String(), "translation").String())

		value, err := s.store.Get(t.Context(), "en", "greeting.hello")
		require.NoError(t, err)
		assert.Equal(t, "Hello", value)
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"translations[en]": {"Title"}, "translations[nl]": {""}}

		rr := s.do(t, http.MethodPost, "/api/v1/i18n/translation/nl/app.title", s.translator,
			"application/x-www-form-urlencoded", form.Encode())
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "[app.title]", gjson.Get(rr.Body.String(), "translation").String())

		_, err := s.store.Get(t.Context(), "nl", "app.title")
		assert.ErrorIs(t, err, translation.ErrNotFound)
	})

	t.Run("unknown locale", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/v1/i18n/translation/de/app.title", s.translator,
			"application/json", `{"translations":{"en":"x"}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/api/v1/i18n/translation/en/app.title", s.translator,
			"application/json", `{"translations":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPostTranslationRateLimited(t *testing.T) {
	s := newTestServer(t, limiter.New(0.001, 1))

	body := `{"translations":{"en":"x"}}`

	rr := s.do(t, http.MethodPost, "/api/v1/i18n/translation/en/app.title", s.translator, "application/json", body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/i18n/translation/en/app.title", s.translator, "application/json", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestToggleAndDemoPage(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.store.Set(t.Context(), "en", "app.title", "Welcome"))

	rr := s.do(t, http.MethodGet, "/", s.translator, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<h1>Welcome</h1>")
	assert.NotContains(t, rr.Body.String(), "inline-translator.css")

	rr = s.do(t, http.MethodGet, "/l10n/translator/toggle?referer="+url.QueryEscape("/page?x=1"), s.translator, "", "")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/page", rr.Header().Get("Location"))

	rr = s.do(t, http.MethodGet, "/", s.translator, "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	page := rr.Body.String()
	assert.Contains(t, page, `data-translation-key="app.title" data-locale="en">Welcome</mark>`)
	assert.Contains(t, page, `data-translation-key="app.footer" data-locale="en">[app.footer]</mark>`)
	assert.Contains(t, page, `<link rel="stylesheet" href="/css/inline-translator.css"/>`)

	rr = s.do(t, http.MethodGet, "/api/v1/i18n/menu?referer=/", s.translator, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Disable translator", gjson.Get(rr.Body.String(), "label").String())
	assert.Equal(t, "/l10n/translator/toggle?referer=%2F", gjson.Get(rr.Body.String(), "url").String())

	// Others never see markers.
	rr = s.do(t, http.MethodGet, "/", s.outsider, "", "")
	assert.NotContains(t, rr.Body.String(), "inline_translation")
}

func TestToggleRejectsForeignReferer(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/l10n/translator/toggle?referer="+url.QueryEscape("https://evil.example/x"), s.translator, "", "")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestStaticAndLocales(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/css/inline-translator.css", "", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ".inline_translation{}", rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/v1/i18n/locales", s.translator, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "en", gjson.Get(rr.Body.String(), "default").String())
	assert.Equal(t, []any{"en", "nl"}, gjson.Get(rr.Body.String(), "locales.#.code").Value())
	assert.Equal(t, "Nederlands", gjson.Get(rr.Body.String(), "locales.1.name").String())

	rr = s.do(t, http.MethodGet, "/nowhere", "", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
