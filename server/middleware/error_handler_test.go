// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/server/middleware/limiter"
	"codeberg.org/ride/inlinetranslator/server/request_context"
)

// createTestRequest creates a test HTTP request with request context.
func createTestRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)

	return req.WithContext(request_context.WithRequestContext(req.Context(), req))
}

func TestCatchError_Success(t *testing.T) {
	t.Parallel()

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<p>ok</p>`))

		return nil
	})

	req := createTestRequest(t, http.MethodGet, "/")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `<p>ok</p>`, rr.Body.String())
	assert.Equal(t, "1", rr.Header().Get("X-Test"))
	assert.NoError(t, request_context.FromRequest(req).RequestError)
}

func TestCatchError_HandlerError(t *testing.T) {
	t.Parallel()

	testError := errors.New("database is on fire")

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		_, _ = w.Write([]byte("partial output"))

		return testError
	})

	req := createTestRequest(t, http.MethodGet, "/")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "partial output")
	assert.NotContains(t, rr.Body.String(), "database is on fire")
	assert.Contains(t, rr.Body.String(), "Something went wrong")
	assert.ErrorIs(t, request_context.FromRequest(req).RequestError, testError)
}

func TestCatchError_NotFound(t *testing.T) {
	t.Parallel()

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		http.NotFound(w, r)

		return nil
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, createTestRequest(t, http.MethodGet, "/missing"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "<h1>404 Not Found</h1>")
}

func TestCatchAPIError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: nope", translation.ErrUnknownLocale), http.StatusBadRequest},
		{translation.ErrInvalidKey, http.StatusBadRequest},
		{security.ErrUnauthenticated, http.StatusUnauthorized},
		{security.ErrForbidden, http.StatusForbidden},
		{translation.ErrNotFound, http.StatusNotFound},
		{limiter.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			handler := CatchAPIError(func(http.ResponseWriter, *http.Request) error { return tt.err })

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, createTestRequest(t, http.MethodGet, "/api/v1/i18n/translation/x"))

			assert.Equal(t, tt.status, rr.Code)
			assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json"))

			body := rr.Body.String()
			require.True(t, gjson.Valid(body), body)
			assert.True(t, gjson.Get(body, "error").Bool())
			assert.NotEmpty(t, gjson.Get(body, "message").String())
		})
	}
}

func TestCatchAPIError_ValidationMessage(t *testing.T) {
	t.Parallel()

	handler := CatchAPIError(func(http.ResponseWriter, *http.Request) error {
		return fmt.Errorf("%w: xx", translation.ErrUnknownLocale)
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, createTestRequest(t, http.MethodPost, "/api/v1/i18n/translation/xx/k"))

	assert.Equal(t, "unknown locale: xx", gjson.Get(rr.Body.String(), "message").String())
}

func TestCatchAPIError_KeepsRateLimitHeaders(t *testing.T) {
	t.Parallel()

	handler := CatchAPIError(func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set(limiter.HeaderRateLimitRemaining, "0")
		w.Header().Set("X-Discarded", "1")

		return limiter.ErrRateLimited
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, createTestRequest(t, http.MethodPost, "/api/v1/i18n/translation/en/k"))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get(limiter.HeaderRateLimitRemaining))
	assert.Empty(t, rr.Header().Get("X-Discarded"))
}
