// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package preference stores per-user preferences such as translator mode.

Preferences are plain strings keyed by (user, name). Boolean helpers encode
values as "true" and "false".
*/
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// TranslatorMode is the preference that switches inline translation markers on for a user.
const TranslatorMode = "translator"

const filePermissions = 0o600

// Store persists user preferences. Implementations are safe for concurrent use.
type Store interface {
	// Preference returns the stored value and whether one exists.
	Preference(ctx context.Context, user, name string) (string, bool, error)

	// SetPreference stores value for (user, name).
	SetPreference(ctx context.Context, user, name, value string) error
}

// Bool reads a boolean preference. Missing or unparsable values read as false.
func Bool(ctx context.Context, store Store, user, name string) (bool, error) {
	value, ok, err := store.Preference(ctx, user, name)
	if err != nil || !ok {
		return false, err
	}

	b, _ := strconv.ParseBool(value)

	return b, nil
}

// SetBool stores a boolean preference.
func SetBool(ctx context.Context, store Store, user, name string, value bool) error {
	return store.SetPreference(ctx, user, name, strconv.FormatBool(value))
}

// Toggle flips a boolean preference and returns the new value.
//
// The read and the write are separate calls, so two concurrent toggles for the
// same user may cancel out. This matches a user clicking a menu item twice.
func Toggle(ctx context.Context, store Store, user, name string) (bool, error) {
	current, err := Bool(ctx, store, user, name)
	if err != nil {
		return false, err
	}

	if err := SetBool(ctx, store, user, name, !current); err != nil {
		return false, err
	}

	return !current, nil
}

// Memory keeps preferences in memory and optionally mirrors them to a JSON file.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string // user -> name -> value
	path   string
}

var _ Store = (*Memory)(nil)

// NewMemory returns a Memory store that is never persisted.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]string)}
}

// OpenFile returns a Memory store backed by the JSON file at path.
// A missing file is treated as an empty store.
func OpenFile(path string) (*Memory, error) {
	m := NewMemory()
	m.path = path

	data, err := os.ReadFile(path) // #nosec G304 -- configured preferences file
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &m.values); err != nil {
			return nil, fmt.Errorf("failed to parse preferences file %s: %w", path, err)
		}
	}

	return m, nil
}

func (m *Memory) Preference(_ context.Context, user, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[user][name]

	return value, ok, nil
}

func (m *Memory) SetPreference(_ context.Context, user, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byName := maps.Clone(m.values[user])
	if byName == nil {
		byName = make(map[string]string)
	}

	byName[name] = value

	previous, existed := m.values[user]
	m.values[user] = byName

	if err := m.flush(); err != nil {
		if existed {
			m.values[user] = previous
		} else {
			delete(m.values, user)
		}

		return err
	}

	return nil
}

// flush writes the store to its file. Callers hold m.mu.
func (m *Memory) flush() error {
	if m.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(m.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}

	return nil
}
