// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translation

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Store. Its contents are lost on exit.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string // locale -> key -> value
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, locale, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[locale][key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (m *Memory) Set(_ context.Context, locale, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKey, ok := m.values[locale]
	if !ok {
		byKey = make(map[string]string)
		m.values[locale] = byKey
	}

	byKey[key] = value

	return nil
}

func (m *Memory) All(_ context.Context, locale string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.values[locale]), nil
}

func (m *Memory) Close() error { return nil }
