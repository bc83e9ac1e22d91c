// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the gentor application.
package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces the file at path with data without ever leaving
// a torn file behind. The data is staged in a temp file in the target's own
// directory (rename is only atomic within one filesystem), fsynced, then
// renamed over the target. After a crash either the old file or the
// complete new one exists, never a mix of both. Missing parent directories
// are created.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmp, err := stageTemp(dir, data, perm)
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace target file: %w", err)
	}
	return nil
}

// stageTemp writes data into a fresh temp file in dir, fsyncs it and
// applies perm. On success the caller owns the returned path; on failure
// nothing is left behind.
func stageTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".gentor-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	fail := func(stage string, err error) (string, error) {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("%s: %w", stage, err)
	}

	if _, err := f.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync temp file", err)
	}

	// Close before chmod and rename; Windows refuses both on open files.
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("set temp file mode: %w", err)
	}
	return tmp, nil
}
