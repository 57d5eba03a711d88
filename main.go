// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Inline translator server: stores page translations and serves the API the
in-page editor uses.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/core/audit"
	"codeberg.org/ride/inlinetranslator/core/storage"
	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/i18n"
	"codeberg.org/ride/inlinetranslator/server/assets"
	"codeberg.org/ride/inlinetranslator/server/middleware/limiter"
	"codeberg.org/ride/inlinetranslator/server/router"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	writeTimeout      time.Duration = 10 * time.Second
	idleTimeout       time.Duration = 30 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second
)

// embeddedContent holds the stylesheet and the UI string catalogues.
//
//go:embed assets/css
//go:embed all:po
var embeddedContent embed.FS

//nolint:gochecknoinits
func init() {
	assets.FS = embeddedContent
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
//
//nolint:funlen
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := i18n.Setup(assets.FS); err != nil {
		return fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	log.Info().Msg("Initialized i18n engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &config.Global

	stores, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()

	manager, err := translator.NewManager(stores.Translations, stores.Preferences, translator.Options{
		Locales:       cfg.Locales.Available,
		DefaultLocale: cfg.Locales.Default,
		Permission:    cfg.Security.Permission,
		Logger:        log.With().Str("sys", "translator").Logger(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up locales: %w", err)
	}

	var writes *limiter.Limiter
	if cfg.Limiter.Enabled {
		writes = limiter.New(cfg.Limiter.Rate, cfg.Limiter.Burst)
	}

	handler := router.New(router.Options{
		Manager:     manager,
		Authority:   cfg.Authority(),
		BasePath:    cfg.API.BasePath,
		TogglePath:  cfg.API.TogglePath,
		StyleURL:    cfg.Assets.StyleURL,
		ScriptURL:   cfg.Assets.ScriptURL,
		Limiter:     writes,
		Development: cfg.Development.InDevelopment,
	})

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	listener, err := listen(ctx)
	if err != nil {
		return err
	}

	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.Serve(listener)
	}()

	// Block until a shutdown signal or a server error is received
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

func listen(ctx context.Context) (net.Listener, error) {
	addr := net.JoinHostPort(config.Global.Basic.Host, config.Global.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("url", fmt.Sprintf("http://localhost:%v/", port)).
		Msg("Listening on address")

	return tcpListener, nil
}
