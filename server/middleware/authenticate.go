// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/core/untrusted"
	"codeberg.org/ride/inlinetranslator/server/request_context"
)

// Authenticate sets RequestContext.User from a valid bearer token or access
// cookie. Requests with a missing or invalid token stay anonymous.
func Authenticate(authority *security.Authority) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		token := untrusted.GetUserToken(r)
		if token != "" && authority != nil {
			user, err := authority.Verify(token)
			if err != nil {
				log.Debug().Str("sys", "auth").Err(err).Msg("Ignoring invalid user token")
			} else {
				request_context.FromRequest(r).User = user
			}
		}

		next.ServeHTTP(w, r)
	}
}

// RequireTranslator lets handler run only for users allowed to edit
// translations. Anonymous users get security.ErrUnauthenticated and users
// without the permission security.ErrForbidden.
func RequireTranslator(manager *translator.Manager, handler FallibleHandler) FallibleHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		user := request_context.FromRequest(r).User

		if user == nil {
			return security.ErrUnauthenticated
		}

		if !manager.Authorized(user) {
			return security.ErrForbidden
		}

		return handler(w, r)
	}
}
