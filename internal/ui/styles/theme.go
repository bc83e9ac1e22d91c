// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the gentor TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled building blocks shared across the chat view, the
// input line, the status bar and the settings editor. It detects the
// terminal's color capability once at startup; components that render
// per-frame reuse the prepared styles instead of rebuilding them.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	// UserBubble wraps user messages; assistant replies render full-width
	// through the markdown pipeline instead.
	UserBubble lipgloss.Style

	// WarningStyle and ErrorStyle mark interrupted and failed replies.
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	// StatsLabel and StatsValue render the per-turn timing line.
	StatsLabel lipgloss.Style
	StatsValue lipgloss.Style

	// ==========================================================================
	// HELP OVERLAY STYLES
	// ==========================================================================

	SectionTitle lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// INPUT LINE STYLES
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style

	// ==========================================================================
	// SETTINGS EDITOR STYLES
	// ==========================================================================

	EditorBox          lipgloss.Style
	EditorTitle        lipgloss.Style
	EditorLabel        lipgloss.Style
	EditorLabelFocused lipgloss.Style
	EditorValue        lipgloss.Style
	EditorFieldError   lipgloss.Style
	EditorHelp         lipgloss.Style
	SaveButton         lipgloss.Style
	SaveButtonArmed    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Transcript
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	// WarningStyle - High contrast amber with bold for colorblind accessibility
	// ACCESSIBILITY: Pair with StatusIndicators.Warning or the ⚠ annotation
	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	// ErrorStyle - High contrast red with bold for colorblind accessibility
	// ACCESSIBILITY: Pair with StatusIndicators.Error or the ✗ annotation
	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.StatsLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatsValue = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Help overlay
	t.SectionTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input line
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	t.CharCountWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Align(lipgloss.Right)

	t.CharCountDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Align(lipgloss.Right)

	// Settings editor
	t.EditorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Background(Surface).
		Padding(1, 2)

	t.EditorTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.EditorLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.EditorLabelFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.EditorValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.EditorFieldError = lipgloss.NewStyle().
		Foreground(Rose).
		PaddingLeft(2)

	t.EditorHelp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SaveButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.SaveButtonArmed = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
