// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/gentor/internal/util"
)

// =============================================================================
// FILE NAMES AND FORMATS
// =============================================================================

// Settings file names, resolved against the working directory.
const (
	FileTOML = "gentor.toml"
	FileJSON = "settings.json"
)

// fileFormat selects the encoding Persist writes. It follows the format of
// the file that was loaded.
type fileFormat int

const (
	formatTOML fileFormat = iota
	formatJSON
)

// ConfigError reports a settings file that could not be read, decoded, or
// written. The store that returned it is still usable: it fell back to
// defaults.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the active settings snapshot and its backing file. All access
// goes through the store; snapshots are value copies, so a caller's copy is
// never mutated behind its back.
type Store struct {
	mu      sync.RWMutex
	current Settings
	path    string
	format  fileFormat
	unsaved bool
}

// Open loads settings from dir, trying gentor.toml first, then the legacy
// settings.json. A missing file is a first run: the file is created with
// defaults. A malformed or invalid file yields a *ConfigError AND a usable
// store fallen back to defaults, marked unsaved.
//
// The returned store is always non-nil and ready for use.
func Open(dir string) (*Store, error) {
	s := &Store{
		path:   filepath.Join(dir, FileTOML),
		format: formatTOML,
	}

	tomlPath := filepath.Join(dir, FileTOML)
	jsonPath := filepath.Join(dir, FileJSON)

	var loaded Settings
	var loadErr error
	switch {
	case fileExists(tomlPath):
		s.path, s.format = tomlPath, formatTOML
		loaded, loadErr = loadTOML(tomlPath)
	case fileExists(jsonPath):
		s.path, s.format = jsonPath, formatJSON
		loaded, loadErr = loadJSON(jsonPath)
	default:
		// First run: create the settings file with generated defaults.
		// The file gets pure defaults; env overrides stay in memory.
		createErr := writeSettings(tomlPath, formatTOML, Default())

		cfg := Default()
		cfg.ApplyEnvOverrides()
		s.current = cfg
		if createErr != nil {
			s.unsaved = true
			return s, &ConfigError{Path: tomlPath, Err: createErr}
		}
		return s, nil
	}

	if loadErr != nil {
		// Malformed file. Fall back to defaults and keep the store usable.
		cfg := Default()
		cfg.ApplyEnvOverrides()
		s.current = cfg
		s.unsaved = true
		return s, &ConfigError{Path: s.path, Err: loadErr}
	}

	loaded.ApplyEnvOverrides()
	if err := loaded.Validate(); err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		s.current = cfg
		s.unsaved = true
		return s, &ConfigError{Path: s.path, Err: err}
	}

	s.current = loaded
	return s, nil
}

// Get returns the active settings snapshot.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the settings file path. Fixed at Open.
func (s *Store) Path() string {
	return s.path
}

// Unsaved reports whether the active snapshot differs from the settings
// file: true after a successful Propose or a fallback to defaults, false
// again after Persist.
func (s *Store) Unsaved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsaved
}

// =============================================================================
// PROPOSE
// =============================================================================

// Propose validates edits against the option schema and, if every edit is
// acceptable, atomically replaces the active snapshot with the updated copy
// and returns it. On failure the active snapshot is left untouched and the
// returned ValidateErrors names each offending option.
//
// Edits are applied in sorted key order so error reports are deterministic.
func (s *Store) Propose(edits map[string]string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.current

	keys := make([]string, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs ValidateErrors
	for _, k := range keys {
		if err := staged.Set(k, edits[k]); err != nil {
			var verr ValidationError
			if errors.As(err, &verr) {
				errs = append(errs, verr)
			} else {
				errs = append(errs, ValidationError{Field: k, Message: err.Error()})
			}
		}
	}

	if err := staged.Validate(); err != nil {
		var list ValidateErrors
		if errors.As(err, &list) {
			errs = append(errs, list...)
		}
	}

	if len(errs) > 0 {
		return Settings{}, errs
	}

	s.current = staged
	s.unsaved = true
	return staged, nil
}

// =============================================================================
// PERSIST AND RELOAD
// =============================================================================

// Persist writes the active snapshot back to the settings file in the
// format it was loaded from. The write is atomic (temp file + rename) with
// 0600 permissions since the file carries an API key. Failure leaves the
// snapshot active and unsaved.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSettings(s.path, s.format, s.current); err != nil {
		return err
	}
	s.unsaved = false
	return nil
}

// Reload re-reads the settings file, replacing the active snapshot on
// success. On failure the active snapshot is kept and a *ConfigError
// returned alongside it.
func (s *Store) Reload() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loaded Settings
	var err error
	switch s.format {
	case formatJSON:
		loaded, err = loadJSON(s.path)
	default:
		loaded, err = loadTOML(s.path)
	}
	if err != nil {
		return s.current, &ConfigError{Path: s.path, Err: err}
	}

	loaded.ApplyEnvOverrides()
	if verr := loaded.Validate(); verr != nil {
		return s.current, &ConfigError{Path: s.path, Err: verr}
	}

	s.current = loaded
	s.unsaved = false
	return loaded, nil
}

// =============================================================================
// LOAD AND SAVE HELPERS
// =============================================================================

// loadTOML decodes a TOML settings file. Options missing from the file keep
// their defaults.
func loadTOML(path string) (Settings, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Settings{}, fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return cfg, nil
}

// loadJSON decodes a JSON settings file. Options missing from the file keep
// their defaults.
func loadJSON(path string) (Settings, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read JSON file: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return cfg, nil
}

// writeSettings encodes cfg in the given format and writes it atomically
// with owner-only permissions.
func writeSettings(path string, format fileFormat, cfg Settings) error {
	data, err := encodeSettings(format, cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := util.WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// encodeSettings renders cfg as TOML with a header comment, or as indented
// JSON for legacy settings.json stores.
func encodeSettings(format fileFormat, cfg Settings) ([]byte, error) {
	if format == formatJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	buf.WriteString("# gentor configuration file\n")
	buf.WriteString("# Generated by gentor - edit with care\n")
	buf.WriteString("#\n")
	buf.WriteString("# Documentation: https://github.com/jeranaias/gentor\n")
	buf.WriteString("\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ensureSecurePermissions tightens the settings file to 0600 if it was
// created with looser permissions. The file carries an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
