// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package request_context holds the per-request state shared by the
// middleware chain and the handlers. It lives apart from server/middleware
// so both can import it.
package request_context

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/core/idgen"
	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/i18n"
)

// RequestContext is stored by pointer, so handlers and middleware see each
// other's writes.
type RequestContext struct {
	RequestID string

	// RequestError is set by middleware.CatchError and
	// middleware.CatchAPIError when a handler fails.
	RequestError error

	// StatusCode starts at 200.
	StatusCode int

	// User is nil for anonymous requests.
	User *security.User

	// T is the language of the plugin's own strings.
	T language.Tag
}

type key struct{}

// WithRequestContext resolves the UI language of r and attaches a fresh
// RequestContext to ctx.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = i18n.WithRequest(ctx, r)

	return context.WithValue(ctx, key{}, &RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
		T:          i18n.TagFrom(ctx),
	})
}

// FromContext never returns nil. Without an attached context a detached zero
// value is returned.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(key{}).(*RequestContext); ok {
		return rc
	}

	return &RequestContext{}
}

func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
