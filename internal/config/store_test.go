// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// OPEN
// =============================================================================

// TestOpen_FirstRunCreatesFile tests that a missing settings file is
// created with defaults.
func TestOpen_FirstRunCreatesFile(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err, "first run should not error")
	require.NotNil(t, store)

	path := filepath.Join(dir, FileTOML)
	info, err := os.Stat(path)
	require.NoError(t, err, "first run should create %s", FileTOML)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "settings file should be owner-only")

	var onDisk Settings
	_, err = toml.DecodeFile(path, &onDisk)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", onDisk.Model)
	require.Equal(t, "openai", onDisk.Provider)

	require.Equal(t, Default(), store.Get())
	require.False(t, store.Unsaved(), "created file matches the snapshot")
}

// TestOpen_LoadsTOML tests loading with defaults filled for missing keys.
func TestOpen_LoadsTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileTOML), "model = \"gpt-4o\"\ntemperature = 1.2\n")

	store, err := Open(dir)
	require.NoError(t, err)

	cfg := store.Get()
	require.Equal(t, "gpt-4o", cfg.Model)
	require.Equal(t, 1.2, cfg.Temperature)
	require.Equal(t, "openai", cfg.Provider, "missing keys keep defaults")
	require.Equal(t, 120, cfg.TimeoutSeconds, "missing keys keep defaults")
	require.False(t, store.Unsaved())
}

// TestOpen_LoadsLegacyJSON tests the settings.json compatibility path.
func TestOpen_LoadsLegacyJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileJSON),
		`{"provider":"ollama","model":"llama3.2","api_key":"","base_url":"http://localhost:11434"}`)

	store, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileJSON), store.Path())

	cfg := store.Get()
	require.Equal(t, "ollama", cfg.Provider)
	require.Equal(t, "llama3.2", cfg.Model)
	require.Equal(t, "http://localhost:11434", cfg.BaseURL)
}

// TestOpen_PrefersTOMLOverJSON tests format precedence when both exist.
func TestOpen_PrefersTOMLOverJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileTOML), "model = \"from-toml\"\n")
	writeFile(t, filepath.Join(dir, FileJSON), `{"model":"from-json"}`)

	store, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, "from-toml", store.Get().Model)
}

// TestOpen_MalformedFileFallsBack tests that a corrupt file yields a
// ConfigError and a usable store on defaults.
func TestOpen_MalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileTOML), "model = [not toml")

	store, err := Open(dir)
	require.Error(t, err, "malformed file should be reported")

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr), "error should be *ConfigError, got %T", err)
	require.Contains(t, cerr.Path, FileTOML)

	require.NotNil(t, store, "store must be usable despite the error")
	require.Equal(t, Default(), store.Get(), "store should fall back to defaults")
	require.True(t, store.Unsaved(), "fallback snapshot is not on disk")
}

// TestOpen_InvalidValuesFallBack tests that out-of-range values are
// rejected at load with the offending option named.
func TestOpen_InvalidValuesFallBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileTOML), "temperature = 9.9\n")

	store, err := Open(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "temperature", "error should name the offending option")

	require.Equal(t, 0.7, store.Get().Temperature, "store should fall back to defaults")
	require.True(t, store.Unsaved())
}

// TestOpen_FixesLoosePermissions tests that a world-readable settings file
// is tightened to 0600 on load.
func TestOpen_FixesLoosePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileTOML)
	require.NoError(t, os.WriteFile(path, []byte("model = \"gpt-4o\"\n"), 0644))

	_, err := Open(dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// PROPOSE
// =============================================================================

// TestPropose_AppliesAtomically tests that valid edits replace the snapshot.
func TestPropose_AppliesAtomically(t *testing.T) {
	store := openStore(t)

	updated, err := store.Propose(map[string]string{
		"temperature": "1.5",
		"model":       "gpt-4o",
	})
	require.NoError(t, err)
	require.Equal(t, 1.5, updated.Temperature)
	require.Equal(t, "gpt-4o", updated.Model)

	require.Equal(t, updated, store.Get(), "snapshot should match the returned copy")
	require.True(t, store.Unsaved())
}

// TestPropose_InvalidLeavesSnapshotUntouched tests the rejection contract:
// the error names the option and the active snapshot does not move.
func TestPropose_InvalidLeavesSnapshotUntouched(t *testing.T) {
	store := openStore(t)
	before := store.Get()

	_, err := store.Propose(map[string]string{"temperature": "9.9"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "temperature")
	require.Equal(t, before, store.Get(), "failed propose must not change the snapshot")

	// The same option with a valid value is accepted afterwards.
	updated, err := store.Propose(map[string]string{"temperature": "0.7"})
	require.NoError(t, err)
	require.Equal(t, 0.7, updated.Temperature)
}

// TestPropose_UnknownOptionRejected tests rejection of keys outside the
// schema.
func TestPropose_UnknownOptionRejected(t *testing.T) {
	store := openStore(t)
	before := store.Get()

	_, err := store.Propose(map[string]string{"frobnicate": "1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "frobnicate")
	require.Equal(t, before, store.Get())
}

// TestPropose_CollectsAllErrors tests that every offending option is named
// in one report, in deterministic order.
func TestPropose_CollectsAllErrors(t *testing.T) {
	store := openStore(t)

	_, err := store.Propose(map[string]string{
		"temperature": "9.9",
		"provider":    "dial-up",
	})
	require.Error(t, err)

	msg := err.Error()
	require.Contains(t, msg, "provider")
	require.Contains(t, msg, "temperature")
	require.Less(t, strings.Index(msg, "provider"), strings.Index(msg, "temperature"),
		"errors should be reported in a stable order")

	var errs ValidateErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)
}

// TestPropose_TypeErrorRejectedBeforeRange tests that an unparseable value
// is reported as a validation failure for that option.
func TestPropose_TypeErrorRejectedBeforeRange(t *testing.T) {
	store := openStore(t)
	before := store.Get()

	_, err := store.Propose(map[string]string{"max_tokens": "many"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_tokens")
	require.Equal(t, before, store.Get())
}

// =============================================================================
// PERSIST AND RELOAD
// =============================================================================

// TestPersist_RoundTrip tests that a persisted snapshot survives a fresh
// Open.
func TestPersist_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	_, err = store.Propose(map[string]string{"temperature": "1.5", "model": "gpt-4o"})
	require.NoError(t, err)
	require.True(t, store.Unsaved())

	require.NoError(t, store.Persist())
	require.False(t, store.Unsaved())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 1.5, reopened.Get().Temperature)
	require.Equal(t, "gpt-4o", reopened.Get().Model)
}

// TestPersist_KeepsJSONFormat tests that a legacy JSON store writes JSON
// back and never switches files.
func TestPersist_KeepsJSONFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileJSON), `{"model":"gpt-4o"}`)

	store, err := Open(dir)
	require.NoError(t, err)

	_, err = store.Propose(map[string]string{"temperature": "1.1"})
	require.NoError(t, err)
	require.NoError(t, store.Persist())

	data, err := os.ReadFile(filepath.Join(dir, FileJSON))
	require.NoError(t, err)

	var onDisk Settings
	require.NoError(t, json.Unmarshal(data, &onDisk), "persisted file should stay JSON")
	require.Equal(t, 1.1, onDisk.Temperature)

	_, err = os.Stat(filepath.Join(dir, FileTOML))
	require.True(t, os.IsNotExist(err), "persist must not create a TOML file for a JSON store")
}

// TestReload_PicksUpChanges tests re-reading the file on demand.
func TestReload_PicksUpChanges(t *testing.T) {
	store := openStore(t)

	writeFile(t, store.Path(), "model = \"gpt-4o\"\n")

	cfg, err := store.Reload()
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", cfg.Model)
	require.Equal(t, "gpt-4o", store.Get().Model)
	require.False(t, store.Unsaved())
}

// TestReload_KeepsSnapshotOnError tests that a corrupt file on disk leaves
// the active snapshot in place.
func TestReload_KeepsSnapshotOnError(t *testing.T) {
	store := openStore(t)
	before := store.Get()

	writeFile(t, store.Path(), "model = [broken")

	cfg, err := store.Reload()
	require.Error(t, err)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, before, cfg, "Reload should return the kept snapshot")
	require.Equal(t, before, store.Get())
}

// =============================================================================
// CONCURRENCY
// =============================================================================

// TestStore_ConcurrentAccess tests that Get, Propose, and Unsaved can run
// concurrently without races.
// Run with: go test -race ./internal/config/
func TestStore_ConcurrentAccess(t *testing.T) {
	store := openStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			cfg := store.Get()
			if cfg.Provider == "" {
				t.Error("Get() returned an empty provider")
			}
			_ = store.Unsaved()
		}()

		go func(n int) {
			defer wg.Done()
			temp := "0.5"
			if n%2 == 0 {
				temp = "1.5"
			}
			if _, err := store.Propose(map[string]string{"temperature": temp}); err != nil {
				t.Errorf("Propose() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.Get().Validate(), "snapshot must stay valid under concurrency")
}

// =============================================================================
// HELPERS
// =============================================================================

// openStore opens a store against a fresh temp directory, failing the test
// on any startup error.
func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	return store
}

// writeFile writes a settings file with owner-only permissions.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}
