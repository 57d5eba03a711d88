// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"errors"
	"net/http"

	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/i18n"
	"codeberg.org/ride/inlinetranslator/server/middleware/limiter"
)

// ErrBadRequest marks request bodies or parameters that cannot be used.
var ErrBadRequest = errors.New("bad request")

// StatusFor maps a handler error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, translation.ErrInvalidKey),
		errors.Is(err, translation.ErrUnknownLocale):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, security.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, translation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, limiter.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage is the text shown to users for err answered with status.
//
// Validation errors keep their own text. Everything else gets a translated
// generic message so internals are not leaked.
func ErrorMessage(ctx context.Context, status int, err error) string {
	var userErr *i18n.UserError
	if errors.As(err, &userErr) {
		return userErr.Error()
	}

	switch status {
	case http.StatusBadRequest:
		if err != nil {
			return err.Error()
		}

		return i18n.BadRequest.Tr(ctx)
	case http.StatusUnauthorized:
		return i18n.Unauthenticated.Tr(ctx)
	case http.StatusForbidden:
		return i18n.Forbidden.Tr(ctx)
	case http.StatusNotFound:
		return i18n.NotFound.Tr(ctx)
	case http.StatusTooManyRequests:
		return i18n.RateLimited.Tr(ctx)
	default:
		return i18n.InternalError.Tr(ctx)
	}
}
