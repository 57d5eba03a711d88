// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	defaultTokenTTL   = 30 * 24 * time.Hour
	defaultCacheSize  = 1000
	defaultWriteRate  = 2
	defaultWriteBurst = 10
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8283"

	cfg.API.BasePath = "/api/v1/i18n"
	cfg.API.TogglePath = "/l10n/translator/toggle"

	cfg.Locales.Available = []string{"en"}
	cfg.Locales.Default = ""

	cfg.Storage.Backend = BackendFile
	cfg.Storage.Path = "./data/translations"
	cfg.Storage.DSN = ""
	cfg.Storage.Format = "json"
	cfg.Storage.PreferencesPath = "./data/preferences.json"

	cfg.Cache.Enabled = false
	cfg.Cache.Size = defaultCacheSize
	cfg.Cache.Compress = false

	cfg.Security.Secret = ""
	cfg.Security.Permission = "/l10n**"
	cfg.Security.TokenTTL = defaultTokenTTL

	cfg.Assets.StyleURL = "/css/inline-translator.css"
	// No browser editor ships with the server; l10nctl edit drives the widget.
	cfg.Assets.ScriptURL = ""

	cfg.Limiter.Enabled = true
	cfg.Limiter.Rate = defaultWriteRate
	cfg.Limiter.Burst = defaultWriteBurst

	cfg.Development.InDevelopment = false

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Internationalization.StrictMissingKeys = false

	cfg.authority = nil
}
