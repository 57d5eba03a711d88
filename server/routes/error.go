// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/server/request_context"
)

// ErrorPage renders an error page for the error and status in the request context.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	rc := request_context.FromRequest(r)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(rc.StatusCode)

	message := ErrorMessage(r.Context(), rc.StatusCode, rc.RequestError)

	if err := errorView(rc.T.String(), rc.StatusCode, message).Render(r.Context(), w); err != nil {
		log.Err(err).Msg("Failed to render the error page")
	}
}
