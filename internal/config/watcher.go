// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// SETTINGS FILE WATCHER
// =============================================================================

// DefaultDebounce is the quiet period after the last write before the
// settings file is re-read.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-reads the settings file when it changes on disk and delivers
// the new snapshot via the onChange callback. Invalid contents are reported
// via onError and the active snapshot stays unchanged.
//
// The parent directory is watched rather than the file itself: editors and
// atomic writers replace the file by rename, which drops inode-level
// watches. Change bursts are debounced so one save produces one reload.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration

	onChange func(Settings)
	onError  func(error)

	mu      sync.Mutex
	pending time.Time
	dirty   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the store's settings file. A debounce of
// zero or less selects DefaultDebounce. Either callback may be nil.
func NewWatcher(store *Store, debounce time.Duration, onChange func(Settings), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		store:    store,
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		ctx:      ctx,
		cancel:   cancel,
	}

	return w, nil
}

// Watch starts watching for settings file changes.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents marks the settings file dirty on relevant events. Events
// for other files in the directory are ignored.
func (w *Watcher) processEvents() {
	target := filepath.Base(w.store.Path())

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			w.pending = time.Now()
			w.dirty = true
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// processPending reloads the store once the debounce window after the last
// change has passed.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := w.dirty && time.Since(w.pending) >= w.debounce
			if fire {
				w.dirty = false
			}
			w.mu.Unlock()

			if !fire {
				continue
			}

			cfg, err := w.store.Reload()
			if err != nil {
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			if w.onChange != nil {
				w.onChange(cfg)
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
