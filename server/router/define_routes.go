// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/server/assets"
	"codeberg.org/ride/inlinetranslator/server/middleware"
	"codeberg.org/ride/inlinetranslator/server/routes"
)

// DefineRoutes sets up all the routes for the application using our custom Router.
func (router *Router) DefineRoutes(opts Options) {
	api := &routes.API{
		Manager:    opts.Manager,
		TogglePath: opts.TogglePath,
	}

	base := strings.TrimSuffix(opts.BasePath, "/")

	// Translator-only routes.
	guard := func(h middleware.FallibleHandler) middleware.FallibleHandler {
		return middleware.RequireTranslator(opts.Manager, h)
	}

	write := api.PostTranslation
	if opts.Limiter != nil {
		write = opts.Limiter.Wrap(write)
	}

	// Widget API routes
	router.HandleFunc("GET "+base+"/translation/{key}", middleware.CatchAPIError(guard(api.GetTranslation)))
	router.HandleFunc("POST "+base+"/translation/{locale}/{key}", middleware.CatchAPIError(guard(write)))
	router.HandleFunc("GET "+base+"/menu", middleware.CatchAPIError(guard(api.Menu)))
	router.HandleFunc("GET "+base+"/locales", middleware.CatchAPIError(guard(api.Locales)))

	// Translator mode toggle
	router.HandleFunc("GET "+opts.TogglePath, middleware.CatchError(guard(api.Toggle)))

	// Static files from the embedded assets directory.
	if static := fileServer(); static != nil {
		router.Handle("GET /css/", static)
		router.Handle("GET /js/", static)
	}

	// /{$} matches only the root path
	router.HandleFunc("GET /{$}", middleware.CatchError(api.DemoPage))

	if opts.Development {
		registerDebugRoutes(router)
	}
}

// fileServer serves the assets directory of assets.FS, or returns nil when
// there are no assets.
func fileServer() http.Handler {
	if assets.FS == nil {
		return nil
	}

	static, err := assets.StaticHandler("assets")
	if err != nil {
		log.Warn().Err(err).Msg("Static assets unavailable")

		return nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// go:embed content only changes with a new build.
		w.Header().Set("ETag", `"`+config.BuildVersion+"-"+config.Global.Build.Revision()+`"`)
		static.ServeHTTP(w, r)
	})
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	if err := flightRecorder.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start flight recorder")
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, r *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
