// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the gentor settings file.
//
// Settings live in the working directory as gentor.toml (TOML, preferred)
// or settings.json (JSON, recognized for compatibility with earlier
// releases). A Store loads the file once at startup, hands out immutable
// value snapshots, validates and atomically applies edits, and writes the
// file back via atomic rename.
//
// # Configuration Precedence
//
// Settings are resolved from (in order of precedence):
//   - Environment variables (GENTOR_*)
//   - ./gentor.toml
//   - ./settings.json
//   - Built-in defaults
//
// # Usage
//
// Open a store:
//
//	store, err := config.Open(".")
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, "settings:", err) // store is still usable
//	}
//
// Read and edit settings:
//
//	cfg := store.Get()
//	updated, err := store.Propose(map[string]string{"temperature": "0.9"})
package config
