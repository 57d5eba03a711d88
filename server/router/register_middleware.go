// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/ride/inlinetranslator/server/middleware"
	"codeberg.org/ride/inlinetranslator/server/middleware/set_request_context"
)

func (router *Router) RegisterMiddleware(opts Options) {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                 // handle trailing slashes
	router.Use(set_request_context.WithRequestContext)  // needed for everything else
	router.Use(middleware.Authenticate(opts.Authority)) // sets the user
	router.Use(middleware.SetResponseHeaders)           // all pages need this
	router.Use(middleware.InjectAssets(opts.Manager, opts.StyleURL, opts.ScriptURL))
}
