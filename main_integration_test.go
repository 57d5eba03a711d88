// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build integration

/*
To run these tests, specify `-tags=integration` when running `go test`.
*/
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/ride/inlinetranslator/client"
	"codeberg.org/ride/inlinetranslator/core/security"
)

const (
	// Server configuration constants.
	host      = "127.0.0.1:8282"
	authority = "http://127.0.0.1:8282"

	// Polling constants.
	retryCount  = 10
	dialTimeout = 250 * time.Millisecond
)

var secretKey = security.NewSecretKeyHex()

// httpTestCase defines a test case.
type httpTestCase struct {
	URL                string
	Method             string
	ExpectedStatusCode int
	Token              string
}

// setDefault sets the default values for the test case.
func (c *httpTestCase) setDefault() {
	if c.ExpectedStatusCode == 0 {
		c.ExpectedStatusCode = http.StatusOK
	}

	if c.Method == "" {
		c.Method = http.MethodGet
	}
}

// TestMain is used for global setup and teardown.
//
// It starts the server and waits for it to be available before running tests.
func TestMain(m *testing.M) {
	for name, value := range map[string]string{
		"L10N_HOST":            "127.0.0.1",
		"L10N_PORT":            "8282",
		"L10N_LOCALES":         "en,nl",
		"L10N_STORAGE_BACKEND": "memory",
		"L10N_SECRET":          secretKey,
	} {
		if err := os.Setenv(name, value); err != nil {
			log.Fatalf("Failed to set %s: %v", name, err)
		}
	}

	go func() {
		if err := run(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for the server.
	if !waitForServerReady() {
		log.Fatalf("Server did not start in time")
	}

	os.Exit(m.Run())
}

// waitForServerReady polls the server until it's available or the retries are exhausted.
func waitForServerReady() bool {
	for range retryCount {
		conn, err := net.DialTimeout("tcp", host, dialTimeout)
		if err == nil {
			_ = conn.Close()

			return true // Server is up.
		}

		time.Sleep(dialTimeout)
	}

	return false
}

func issueToken(t *testing.T, permissions ...string) string {
	t.Helper()

	a, err := security.NewAuthority(secretKey)
	require.NoError(t, err)

	token, err := a.Issue(security.User{Name: "integration", Permissions: permissions}, time.Hour)
	require.NoError(t, err)

	return token
}

func TestBasicAllRoutes(t *testing.T) {
	t.Parallel()

	translator := issueToken(t, "/l10n**")
	visitor := issueToken(t, "/docs/**")

	testCases := []httpTestCase{
		{URL: "/"},
		{URL: "/?locale=nl"},
		{URL: "/css/inline-translator.css"},
		{URL: "/missing", ExpectedStatusCode: http.StatusNotFound},

		{URL: "/api/v1/i18n/locales", ExpectedStatusCode: http.StatusUnauthorized},
		{URL: "/api/v1/i18n/locales", Token: visitor, ExpectedStatusCode: http.StatusForbidden},
		{URL: "/api/v1/i18n/locales", Token: translator},
		{URL: "/api/v1/i18n/menu", Token: translator},
		{URL: "/api/v1/i18n/translation/app.title", Token: translator},
		{URL: "/api/v1/i18n/translation/bad%20key", Token: translator, ExpectedStatusCode: http.StatusBadRequest},
		{URL: "/l10n/translator/toggle?referer=/", Token: translator, ExpectedStatusCode: http.StatusSeeOther},
	}

	httpClient := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	for _, tc := range testCases {
		tc.setDefault()

		t.Run(tc.Method+" "+tc.URL, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequestWithContext(context.Background(), tc.Method, authority+tc.URL, nil)
			require.NoError(t, err)

			if tc.Token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.Token)
			}

			resp, err := httpClient.Do(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.ExpectedStatusCode, resp.StatusCode)
		})
	}
}

func TestSaveAndFetch(t *testing.T) {
	t.Parallel()

	c, err := client.New(authority+"/api/v1/i18n", client.WithBearerToken(issueToken(t, "/l10n**")))
	require.NoError(t, err)

	text, err := c.SaveVariants(context.Background(), "nl", "integration.greeting", map[string]string{
		"en": "Hello",
		"nl": "Hallo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hallo", text)

	variants, err := c.FetchVariants(context.Background(), "integration.greeting")
	require.NoError(t, err)
	require.Contains(t, variants, "en")
	require.NotNil(t, variants["en"].Translation)
	assert.Equal(t, "Hello", *variants["en"].Translation)
	assert.NotEmpty(t, variants["nl"].Locale)
}
