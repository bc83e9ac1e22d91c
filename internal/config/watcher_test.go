// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// watcherHarness wires a watcher with buffered callback channels.
type watcherHarness struct {
	store   *Store
	watcher *Watcher
	changes chan Settings
	errs    chan error
}

func newWatcherHarness(t *testing.T) *watcherHarness {
	t.Helper()

	store := openStore(t)
	changes := make(chan Settings, 4)
	errs := make(chan error, 4)

	w, err := NewWatcher(store, 50*time.Millisecond,
		func(cfg Settings) { changes <- cfg },
		func(err error) { errs <- err },
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	return &watcherHarness{store: store, watcher: w, changes: changes, errs: errs}
}

// TestWatcher_ReloadsOnChange tests that an on-disk edit reaches the store.
func TestWatcher_ReloadsOnChange(t *testing.T) {
	h := newWatcherHarness(t)

	if err := os.WriteFile(h.store.Path(), []byte("model = \"gpt-4o\"\n"), 0600); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}

	select {
	case cfg := <-h.changes:
		if cfg.Model != "gpt-4o" {
			t.Errorf("reloaded Model = %q, want 'gpt-4o'", cfg.Model)
		}
	case err := <-h.errs:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if got := h.store.Get().Model; got != "gpt-4o" {
		t.Errorf("store snapshot Model = %q, want 'gpt-4o'", got)
	}
}

// TestWatcher_ReportsInvalidContents tests that a bad edit is reported and
// the active snapshot stays unchanged.
func TestWatcher_ReportsInvalidContents(t *testing.T) {
	h := newWatcherHarness(t)
	before := h.store.Get()

	if err := os.WriteFile(h.store.Path(), []byte("temperature = 99.0\n"), 0600); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}

	select {
	case err := <-h.errs:
		if err == nil {
			t.Fatal("expected a reload error")
		}
	case cfg := <-h.changes:
		t.Fatalf("invalid contents should not produce a change, got %+v", cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	if h.store.Get() != before {
		t.Error("invalid contents must leave the active snapshot unchanged")
	}
}

// TestWatcher_IgnoresOtherFiles tests that unrelated files in the directory
// never trigger a reload.
func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	h := newWatcherHarness(t)

	other := filepath.Join(filepath.Dir(h.store.Path()), "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated"), 0600); err != nil {
		t.Fatalf("writing unrelated file: %v", err)
	}

	select {
	case cfg := <-h.changes:
		t.Fatalf("unrelated file triggered a reload: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
		// No reload fired.
	}
}

// TestWatcher_CloseStops tests that no events are delivered after Close.
func TestWatcher_CloseStops(t *testing.T) {
	h := newWatcherHarness(t)

	if err := h.watcher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := os.WriteFile(h.store.Path(), []byte("model = \"gpt-4o\"\n"), 0600); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}

	select {
	case cfg := <-h.changes:
		t.Fatalf("change delivered after Close: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
		// Watcher is quiet after Close.
	}
}
