// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

const headerBrand = "gentor"

// Header is the title bar: the brand plus, once known, the active provider
// and model. It has two renderings: a bordered two-line box, and a one-line
// variant the chat view swaps in when the terminal is short.
type Header struct {
	Provider string
	Model    string
	Width    int

	brand    lipgloss.Style
	accent   lipgloss.Style
	provider lipgloss.Style
	model    lipgloss.Style
	sep      lipgloss.Style
}

// NewHeader creates a header at the default width.
func NewHeader() *Header {
	return &Header{
		Width:    80,
		brand:    lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan),
		accent:   lipgloss.NewStyle().Foreground(styles.Purple),
		provider: lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald),
		model:    lipgloss.NewStyle().Foreground(styles.TextSecondary),
		sep:      lipgloss.NewStyle().Foreground(styles.Overlay),
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the provider and model shown in the subtitle. Settings
// edits land here mid-session, so the header always names the model the
// next turn will use.
func (h *Header) SetModel(provider, model string) {
	h.Provider = provider
	h.Model = model
}

// View renders the bordered header box.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}
	center := lipgloss.NewStyle().
		Width(width - 6). // inside border and padding
		Align(lipgloss.Center)

	title := h.accent.Render("< ") + h.brand.Render(headerBrand) + h.accent.Render(" >")
	lines := []string{center.Render(title)}
	if sub := h.subtitle(); sub != "" {
		lines = append(lines, center.Render(sub))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.SurfaceDim).
		Padding(0, 2).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// ViewCompact renders the single-line variant: <gentor> | PROVIDER | model.
func (h *Header) ViewCompact() string {
	parts := []string{
		h.accent.Render("<") + h.brand.Render(headerBrand) + h.accent.Render(">"),
	}
	if h.Provider != "" {
		parts = append(parts, h.provider.Render(strings.ToUpper(h.Provider)))
	}
	if h.Model != "" {
		parts = append(parts, h.model.Render(h.Model))
	}
	return strings.Join(parts, h.sep.Render(" | "))
}

// subtitle joins the provider badge and model name; either may still be
// unknown during startup.
func (h *Header) subtitle() string {
	var parts []string
	if h.Provider != "" {
		parts = append(parts, h.provider.Render("["+strings.ToUpper(h.Provider)+"]"))
	}
	if h.Model != "" {
		parts = append(parts, h.model.Render(h.Model))
	}
	return strings.Join(parts, " ")
}
