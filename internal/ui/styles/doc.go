// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the gentor TUI.

This package defines the color palette and the themed Lip Gloss styles used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

# Color System (colors.go)

## Accent Colors

  - Purple - Primary accent for the settings editor and welcome chrome
  - Cyan - Brand color for prompts, commands, and shortcut keys
  - Emerald - Success states and the connected-provider indicator
  - Amber - Warnings, queued input, and the unsaved-settings indicator
  - Rose - Errors, invalid settings fields, and input overflow

## Surface Colors

Layered surface system for depth:

	Surface    - Main background
	SurfaceDim - Subtle backgrounds (headers, status bars)
	Overlay    - Borders, separators, popups
	OverlayDim - Dimmer overlay for less prominent elements

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

## User Message Colors

User messages render as right-aligned bubbles in blue tones
(UserBubbleBg/Fg/Border); assistant replies flow full-width through the
markdown renderer and take their colors from the glamour style.

# Theme System (theme.go)

The Theme struct carries the prepared styles for the transcript, the help
overlay, the input line and the settings editor, plus the terminal
capabilities detected at startup:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	if theme.HasTrueColor {
		// Terminal supports 16M colors
	}

# Status Indicators

ASCII indicators for various states, shown alongside colors so status
reads correctly for colorblind users:

	StatusIndicators.Success   - [OK]
	StatusIndicators.Error     - [X]
	StatusIndicators.Warning   - [!]
	StatusIndicators.Info      - [i]

# Usage Example

	import "github.com/jeranaias/gentor/internal/ui/styles"

	// Use adaptive colors
	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	// Use theme for responsive layout decisions
	theme := styles.NewTheme()
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// Compact rendering
	}
*/
package styles
