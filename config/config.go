// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package config loads the server configuration.

Sources are applied in this order, each overriding the previous one:
defaults, the YAML file, a .env file in the working directory, and L10N_*
environment variables.
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/security"
)

// Global exposes the server configuration.
var Global ServerConfig

// StorageBackend selects where translations and preferences are kept.
type StorageBackend string

const (
	BackendMemory   StorageBackend = "memory"
	BackendFile     StorageBackend = "file"
	BackendSQLite   StorageBackend = "sqlite"
	BackendPostgres StorageBackend = "postgres"
)

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host string `env:"L10N_HOST" yaml:"host"`
		Port string `env:"L10N_PORT" yaml:"port"`
	} `yaml:"basic"`

	API struct {
		// BasePath prefixes the translation, menu and locales endpoints.
		BasePath   string `env:"L10N_API_BASE_PATH" yaml:"basePath"`
		TogglePath string `env:"L10N_API_TOGGLE_PATH" yaml:"togglePath"`
	} `yaml:"api"`

	Locales struct {
		Available []string `env:"L10N_LOCALES" yaml:"available"`
		Default   string   `env:"L10N_DEFAULT_LOCALE" yaml:"default"`
	} `yaml:"locales"`

	Storage struct {
		Backend StorageBackend `env:"L10N_STORAGE_BACKEND" yaml:"backend"`

		// Path is the directory of the file backend or the database file of the sqlite backend.
		Path   string `env:"L10N_STORAGE_PATH" yaml:"path"`
		DSN    string `env:"L10N_STORAGE_DSN" yaml:"dsn"`
		Format string `env:"L10N_STORAGE_FORMAT" yaml:"format"`

		// PreferencesPath is where the file and memory backends keep user preferences.
		PreferencesPath string `env:"L10N_PREFERENCES_PATH" yaml:"preferencesPath"`
	} `yaml:"storage"`

	Cache struct {
		Enabled  bool `env:"L10N_CACHE" yaml:"enabled"`
		Size     int  `env:"L10N_CACHE_SIZE" yaml:"size"`
		Compress bool `env:"L10N_CACHE_COMPRESS" yaml:"compress"`
	} `yaml:"cache"`

	Security struct {
		// hex of the v4.public secret key
		Secret     string        `env:"L10N_SECRET" yaml:"secret"`
		Permission string        `env:"L10N_PERMISSION" yaml:"permission"`
		TokenTTL   time.Duration `env:"L10N_TOKEN_TTL" yaml:"tokenTTL"`
	} `yaml:"security"`

	Assets struct {
		StyleURL  string `env:"L10N_STYLE_URL" yaml:"styleUrl"`
		ScriptURL string `env:"L10N_SCRIPT_URL" yaml:"scriptUrl"`
	} `yaml:"assets"`

	Limiter struct {
		Enabled bool    `env:"L10N_LIMITER" yaml:"enabled"`
		Rate    float64 `env:"L10N_LIMITER_RATE" yaml:"rate"`
		Burst   int     `env:"L10N_LIMITER_BURST" yaml:"burst"`
	} `yaml:"limiter"`

	Development struct {
		InDevelopment bool `env:"L10N_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"L10N_LOG_LEVEL" yaml:"logLevel"`
		Outputs []string `env:"L10N_LOG_OUTPUTS" yaml:"logOutputs"`
		Format  string   `env:"L10N_LOG_FORMAT" yaml:"logFormat"`
	} `yaml:"log"`

	authority *security.Authority

	Internationalization struct {
		// When enabled, missing UI strings are logged once per locale and key
		// and visibly wrapped.
		StrictMissingKeys bool `env:"L10N_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`
}

// Authority verifies user tokens. It is set once the configuration is valid.
func (cfg *ServerConfig) Authority() *security.Authority {
	return cfg.authority
}

// LoadConfig resolves the configuration file path and loads the configuration.
//
// The path is, in order of precedence, the -config flag, L10N_CONFIGFILE, or ./config.yaml.
func (cfg *ServerConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	configFilePath := parsedConfigFlagValue

	if !configFlagUserSet {
		if envVar := os.Getenv("L10N_CONFIGFILE"); envVar != "" {
			configFilePath = envVar
		}
	}

	if err := cfg.Load(configFilePath); err != nil {
		return err
	}

	cfg.setupAudit()
	cfg.print()

	return nil
}

// Load applies every configuration source and validates the result.
// It does not touch logging.
func (cfg *ServerConfig) Load(configFilePath string) error {
	cfg.SetDefaults()
	cfg.Build.load()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(".env"); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

// useDotEnv loads path into the environment. Variables already set win.
func useDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Loaded .env file")

	return nil
}

var staticSkippedPathPrefixes = []string{"/css/", "/js/"}

// ShouldSkipServerLogging reports whether requests for path are not logged.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	if cfg.Development.InDevelopment {
		return false
	}

	for _, prefix := range staticSkippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
