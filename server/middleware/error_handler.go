// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/core/audit"
	"codeberg.org/ride/inlinetranslator/server/request_context"
	"codeberg.org/ride/inlinetranslator/server/routes"
)

// CatchError wraps page handlers. Returned errors and 404 responses are
// replaced by the HTML error page.
func CatchError(handler FallibleHandler) http.HandlerFunc {
	return catch(handler, func(w http.ResponseWriter, r *http.Request) {
		routes.ErrorPage(w, r)
	})
}

// CatchAPIError wraps API handlers. Returned errors become
// {"error":true,"message":...} with the status given by routes.StatusFor.
func CatchAPIError(handler FallibleHandler) http.HandlerFunc {
	return catch(handler, func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		body := routes.APIError{
			Error:   true,
			Message: routes.ErrorMessage(r.Context(), ctx.StatusCode, ctx.RequestError),
		}

		if err := routes.WriteJSON(w, ctx.StatusCode, body); err != nil {
			log.Err(err).Msg("Failed to write error response")
		}
	})
}

// catch buffers the output of handler so a failure can discard it.
//
// After the handler runs:
//   - a returned error without an error status written is mapped with
//     routes.StatusFor and rendered by renderError;
//   - a 404 written by the handler is rendered by renderError as well;
//   - anything else is copied to w as recorded.
//
// The completed request is logged through an audit span.
func catch(handler FallibleHandler, renderError http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToUser,
			RequestID:   ctx.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		_ = span.Begin(r.Context())
		defer span.End()

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		switch {
		case (err != nil && recorder.Code < http.StatusBadRequest) || recorder.Code == http.StatusNotFound:
			if err != nil {
				ctx.StatusCode = routes.StatusFor(err)
			} else {
				ctx.StatusCode = http.StatusNotFound
			}

			maps.Copy(w.Header(), rateLimitHeaders(recorder.Header()))
			renderError(w, r)

		default:
			if recorder.Code == 0 {
				recorder.Code = http.StatusOK
			}

			ctx.StatusCode = recorder.Code
			span.Size = recorder.Body.Len()

			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError
		span.End()

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}

// rateLimitHeaders keeps the RateLimit-* headers of a discarded response.
func rateLimitHeaders(h http.Header) http.Header {
	kept := http.Header{}

	for name, values := range h {
		if strings.HasPrefix(name, "Ratelimit-") {
			kept[name] = values
		}
	}

	return kept
}
