// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/security"
	"codeberg.org/ride/inlinetranslator/core/translation"
)

var (
	errInvalidBasePath      = errors.New("api.basePath must start with '/'")
	errInvalidTogglePath    = errors.New("api.togglePath must start with '/'")
	errNoLocales            = errors.New("locales.available must list at least one locale")
	errDefaultLocaleMissing = errors.New("locales.default must be one of locales.available")
	errInvalidBackend       = errors.New("invalid storage.backend")
	errStoragePathRequired  = errors.New("storage.path is required for this backend")
	errStorageDSNRequired   = errors.New("storage.dsn is required for the postgres backend")
	errInvalidStorageFormat = errors.New("storage.format must be json or yaml")
	errInvalidCacheSize     = errors.New("cache.size must be positive when the cache is enabled")
	errSecretRequired       = errors.New("security.secret is required")
	errSecretInvalid        = errors.New("security.secret is not a valid paseto key")
	errPermissionRequired   = errors.New("security.permission is required")
	errInvalidTokenTTL      = errors.New("security.tokenTTL must be positive")
	errInvalidLimiterRate   = errors.New("limiter.rate and limiter.burst must be positive when the limiter is enabled")
	errInvalidLogFormat     = errors.New("log.logFormat must be console or json")
	errPathsOverlap         = errors.New("api.togglePath must not be below api.basePath")
)

// validateAndSet validates the server configuration and normalises some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if cfg.Basic.Host == "" {
		cfg.Basic.Host = "localhost"
		log.Info().Str("host", cfg.Basic.Host).Msg("Binding to default host")
	}

	if cfg.Basic.Port == "" {
		cfg.Basic.Port = "8283"
		log.Info().Str("port", cfg.Basic.Port).Msg("Using default port")
	}

	if err := cfg.validateAPI(); err != nil {
		return err
	}

	if err := cfg.validateLocales(); err != nil {
		return err
	}

	if err := cfg.validateStorage(); err != nil {
		return err
	}

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return errInvalidCacheSize
	}

	if err := cfg.validateSecurity(); err != nil {
		return err
	}

	if cfg.Limiter.Enabled && (cfg.Limiter.Rate <= 0 || cfg.Limiter.Burst <= 0) {
		return errInvalidLimiterRate
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return errInvalidLogFormat
	}

	return nil
}

func (cfg *ServerConfig) validateAPI() error {
	cfg.API.BasePath = strings.TrimSuffix(strings.TrimSpace(cfg.API.BasePath), "/")
	if !strings.HasPrefix(cfg.API.BasePath, "/") {
		return errInvalidBasePath
	}

	cfg.API.TogglePath = strings.TrimSpace(cfg.API.TogglePath)
	if !strings.HasPrefix(cfg.API.TogglePath, "/") {
		return errInvalidTogglePath
	}

	if strings.HasPrefix(cfg.API.TogglePath, cfg.API.BasePath+"/") {
		return errPathsOverlap
	}

	return nil
}

func (cfg *ServerConfig) validateLocales() error {
	available := make([]string, 0, len(cfg.Locales.Available))

	for _, raw := range cfg.Locales.Available {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		code, err := translation.CanonicalLocale(raw)
		if err != nil {
			return fmt.Errorf("locales.available: %w", err)
		}

		available = append(available, code)
	}

	if len(available) == 0 {
		return errNoLocales
	}

	cfg.Locales.Available = available

	if cfg.Locales.Default == "" {
		cfg.Locales.Default = available[0]

		return nil
	}

	code, err := translation.CanonicalLocale(cfg.Locales.Default)
	if err != nil {
		return fmt.Errorf("locales.default: %w", err)
	}

	for _, c := range available {
		if c == code {
			cfg.Locales.Default = code

			return nil
		}
	}

	return errDefaultLocaleMissing
}

func (cfg *ServerConfig) validateStorage() error {
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if cfg.Storage.Path == "" {
			return errStoragePathRequired
		}

		switch cfg.Storage.Format {
		case "json", "yaml":
		default:
			return errInvalidStorageFormat
		}
	case BackendSQLite:
		if cfg.Storage.Path == "" {
			return errStoragePathRequired
		}
	case BackendPostgres:
		if cfg.Storage.DSN == "" {
			return errStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %q", errInvalidBackend, cfg.Storage.Backend)
	}

	return nil
}

func (cfg *ServerConfig) validateSecurity() error {
	if strings.TrimSpace(cfg.Security.Permission) == "" {
		return errPermissionRequired
	}

	if cfg.Security.TokenTTL <= 0 {
		return errInvalidTokenTTL
	}

	if cfg.Security.Secret == "" {
		log.Error().Msgf("Generated secret key (put this in config.yaml)\nsecurity:\n  secret: \"%s\"", security.NewSecretKeyHex())

		return errSecretRequired
	}

	authority, err := security.NewAuthority(cfg.Security.Secret)
	if err != nil {
		log.Error().Err(err).Msgf("Generated secret key (put this in config.yaml)\nsecurity:\n  secret: \"%s\"", security.NewSecretKeyHex())

		return errSecretInvalid
	}

	cfg.authority = authority

	return nil
}
