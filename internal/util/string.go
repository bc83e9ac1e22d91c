// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the gentor application.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Width handling goes through go-runewidth so CJK and other
// double-width characters never break column alignment in the TUI.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width, appending
// "…" when anything was cut. Double-width characters count as 2 columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadWidth pads a string with spaces on the right to the given display
// width. Strings already at or past the width are returned unchanged.
func PadWidth(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// WrapWidth wraps text at the given display width, breaking on spaces
// where possible. Words wider than the width are split mid-word. Existing
// newlines are preserved.
func WrapWidth(s string, width int) string {
	if width <= 0 {
		return s
	}

	var out strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(wrapLine(line, width))
	}
	return out.String()
}

func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}

	var out strings.Builder
	var cur strings.Builder
	curWidth := 0

	flush := func() {
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(cur.String())
		cur.Reset()
		curWidth = 0
	}

	for _, word := range strings.Split(line, " ") {
		w := runewidth.StringWidth(word)
		switch {
		case curWidth == 0 && w <= width:
			cur.WriteString(word)
			curWidth = w
		case curWidth+1+w <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curWidth += 1 + w
		case w <= width:
			flush()
			cur.WriteString(word)
			curWidth = w
		default:
			// Word wider than the line; hard-split it.
			if curWidth > 0 {
				flush()
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if curWidth+rw > width {
					flush()
				}
				cur.WriteRune(r)
				curWidth += rw
			}
		}
	}
	if cur.Len() > 0 {
		flush()
	}
	return out.String()
}
