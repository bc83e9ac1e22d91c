// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestNewCodeBlock(t *testing.T) {
	cb := NewCodeBlock("go", "package main")

	if cb.Language != "go" {
		t.Errorf("Language = %q, want %q", cb.Language, "go")
	}
	if cb.MaxWidth != 80 {
		t.Errorf("MaxWidth = %d, want default 80", cb.MaxWidth)
	}

	cb.SetMaxWidth(120)
	if cb.MaxWidth != 120 {
		t.Errorf("MaxWidth after SetMaxWidth = %d, want 120", cb.MaxWidth)
	}
}

func TestCodeBlockRenderKeepsSource(t *testing.T) {
	cb := NewCodeBlock("go", "package main\n\nfunc main() {}")
	out := cb.Render()

	// Highlighting wraps tokens in escape codes but never rewrites them.
	for _, tok := range []string{"package", "main", "func"} {
		if !strings.Contains(out, tok) {
			t.Errorf("Render() missing token %q", tok)
		}
	}
}

func TestCodeBlockRenderNumbersLines(t *testing.T) {
	cb := NewCodeBlock("", "one\ntwo\nthree")
	out := cb.Render()

	for _, n := range []string{" 1 ", " 2 ", " 3 "} {
		if !strings.Contains(out, n) {
			t.Errorf("Render() missing line number %q", n)
		}
	}
}

func TestCodeBlockRenderBadge(t *testing.T) {
	withLang := NewCodeBlock("python", "x = 1")
	if !strings.Contains(withLang.Render(), "python") {
		t.Error("Render() should include the language badge")
	}

	noLang := NewCodeBlock("", "x = 1")
	if got := noLang.Render(); got == "" {
		t.Error("Render() without a language should still produce the block")
	}
}

func TestCodeBlockRenderEmptySource(t *testing.T) {
	cb := NewCodeBlock("go", "")
	if got := cb.Render(); got == "" {
		t.Error("Render() of empty source should still draw the frame")
	}
}

func TestGutterWidth(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{1, 2},
		{9, 2},
		{10, 2},
		{99, 2},
		{100, 3},
		{1000, 4},
	}

	for _, tc := range cases {
		if got := gutterWidth(tc.lines); got != tc.want {
			t.Errorf("gutterWidth(%d) = %d, want %d", tc.lines, got, tc.want)
		}
	}
}

func TestHighlightFallsBackToPlainText(t *testing.T) {
	src := "completely unremarkable prose"
	out := highlight(src, "not-a-language")

	if !strings.Contains(out, "unremarkable") {
		t.Errorf("highlight() lost the source text: %q", out)
	}
}
