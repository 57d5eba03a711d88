// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "codeberg.org/ride/inlinetranslator/core/storage"

// StorageOptions returns the storage and cache settings for storage.Open.
func (cfg *ServerConfig) StorageOptions() storage.Options {
	return storage.Options{
		Backend:         string(cfg.Storage.Backend),
		Path:            cfg.Storage.Path,
		DSN:             cfg.Storage.DSN,
		Format:          cfg.Storage.Format,
		PreferencesPath: cfg.Storage.PreferencesPath,
		Cache:           cfg.Cache.Enabled,
		CacheSize:       cfg.Cache.Size,
		CacheCompress:   cfg.Cache.Compress,
	}
}
