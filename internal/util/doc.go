// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the gentor application.
//
// It contains the crash-safe file writer used by the settings store and
// width-aware string helpers used by the TUI:
//
//   - WriteFileAtomic: temp file + fsync + rename, never a partial file
//   - TruncateWidth, StringWidth, PadWidth: display-column aware via
//     go-runewidth
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
package util
