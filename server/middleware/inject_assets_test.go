// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/core/preference"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/server/request_context"
)

const testPage = "<!DOCTYPE html><html><head><title>t</title></head><body><p>hi</p></body></html>"

func pageHandler(contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(testPage))
	})
}

func TestInjectAssets(t *testing.T) {
	t.Parallel()

	manager, prefs := newTestManager(t)

	translatorUser := &security.User{Name: "ada", Permissions: []string{"/l10n**"}}
	require.NoError(t, preference.SetBool(t.Context(), prefs, "ada", preference.TranslatorMode, true))

	idleUser := &security.User{Name: "eve", Permissions: []string{"/l10n**"}}
	outsider := &security.User{Name: "bob"}

	require.NoError(t, preference.SetBool(t.Context(), prefs, "bob", preference.TranslatorMode, true))

	tests := []struct {
		name        string
		user        *security.User
		contentType string
		injected    bool
	}{
		{name: "translator mode on", user: translatorUser, contentType: "text/html; charset=utf-8", injected: true},
		{name: "translator mode off", user: idleUser, contentType: "text/html; charset=utf-8"},
		{name: "not authorized", user: outsider, contentType: "text/html; charset=utf-8"},
		{name: "anonymous", contentType: "text/html; charset=utf-8"},
		{name: "not html", user: translatorUser, contentType: "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Wrap(InjectAssets(manager, "/css/inline-translator.css", "/js/widget.js"), pageHandler(tt.contentType))

			req := createTestRequest(t, http.MethodGet, "/")
			request_context.FromRequest(req).User = tt.user

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			body := rr.Body.String()

			if tt.injected {
				assert.Contains(t, body, `<link rel="stylesheet" href="/css/inline-translator.css"/>`)
				assert.Contains(t, body, `<script defer="" src="/js/widget.js"></script></head>`)
				assert.Contains(t, body, "<p>hi</p>")
			} else {
				assert.Equal(t, testPage, body)
			}
		})
	}
}

func TestInjectAssetsOnce(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><head><link rel="stylesheet" href="/a.css"></head><body></body></html>`)

	out, err := injectAssets(page, "/a.css", "")
	require.NoError(t, err)
	assert.Equal(t, `<html><head><link rel="stylesheet" href="/a.css"/></head><body></body></html>`, string(out))
}

func TestInjectAssetsWithoutScript(t *testing.T) {
	t.Parallel()

	out, err := injectAssets([]byte(testPage), "/css/inline-translator.css", "")
	require.NoError(t, err)
	assert.Contains(t, string(out), `<link rel="stylesheet" href="/css/inline-translator.css"/>`)
	assert.NotContains(t, string(out), "<script")
}
