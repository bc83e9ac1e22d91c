// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the gentor TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders completed assistant messages as terminal markdown. The
// glamour renderer is cached and rebuilt only when the wrap width changes;
// streaming messages never pass through here, they use the lighter
// code-fence renderer instead.
type Markdown struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdown creates a markdown renderer with the default wrap width.
func NewMarkdown() *Markdown {
	m := &Markdown{}
	m.SetWidth(80)
	return m
}

// SetWidth rebuilds the renderer when the wrap width changes.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == m.width && m.renderer != nil {
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		m.renderer = nil
		m.width = width
		return
	}

	m.renderer = renderer
	m.width = width
}

// Width returns the current wrap width.
func (m *Markdown) Width() int {
	return m.width
}

// Render renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func (m *Markdown) Render(content string) string {
	if m.renderer == nil {
		return content
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}

	// Glamour pads the document with blank lines; the message bubble
	// supplies its own margins.
	return strings.Trim(rendered, "\n")
}
