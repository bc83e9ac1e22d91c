// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Capability detection ran; the profile is whatever the test terminal
	// reports, but rendering through a prepared style must not lose text.
	if got := theme.InputPrompt.Render("> "); !strings.Contains(got, ">") {
		t.Errorf("InputPrompt.Render dropped its text: %q", got)
	}
}

func TestThemeStylesCarryText(t *testing.T) {
	theme := NewTheme()

	styleSet := []struct {
		name  string
		style lipgloss.Style
	}{
		{"UserBubble", theme.UserBubble},
		{"WarningStyle", theme.WarningStyle},
		{"ErrorStyle", theme.ErrorStyle},
		{"StatsLabel", theme.StatsLabel},
		{"StatsValue", theme.StatsValue},
		{"SectionTitle", theme.SectionTitle},
		{"ShortcutKey", theme.ShortcutKey},
		{"ShortcutDesc", theme.ShortcutDesc},
		{"InputPrompt", theme.InputPrompt},
		{"InputText", theme.InputText},
		{"InputPlaceholder", theme.InputPlaceholder},
		{"CharCount", theme.CharCount},
		{"CharCountWarning", theme.CharCountWarning},
		{"CharCountDanger", theme.CharCountDanger},
		{"EditorBox", theme.EditorBox},
		{"EditorTitle", theme.EditorTitle},
		{"EditorLabel", theme.EditorLabel},
		{"EditorLabelFocused", theme.EditorLabelFocused},
		{"EditorValue", theme.EditorValue},
		{"EditorFieldError", theme.EditorFieldError},
		{"EditorHelp", theme.EditorHelp},
		{"SaveButton", theme.SaveButton},
		{"SaveButtonArmed", theme.SaveButtonArmed},
	}

	for _, s := range styleSet {
		rendered := s.style.Render("probe")
		if !strings.Contains(rendered, "probe") {
			t.Errorf("%s.Render lost its content: %q", s.name, rendered)
		}
	}
}

func TestUserBubbleIndentsFromLeft(t *testing.T) {
	theme := NewTheme()

	rendered := theme.UserBubble.Render("hi")
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "    ") {
			t.Errorf("line %d = %q, want four columns of left margin", i, line)
		}
	}
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{0, LayoutNarrow},
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{80, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestThemeInstancesIndependent(t *testing.T) {
	theme1 := NewTheme()
	theme2 := NewTheme()

	if theme1 == theme2 {
		t.Fatal("NewTheme() should create distinct theme instances")
	}

	theme1.SetSize(100, 50)
	theme2.SetSize(200, 80)

	if theme1.Width == theme2.Width {
		t.Error("themes should have independent state")
	}
}
