// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the gentor TUI.
package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ERROR DISPLAY TESTS
// =============================================================================

func TestNewErrorDisplay(t *testing.T) {
	e := NewErrorDisplay()

	if e.IsVisible() {
		t.Error("NewErrorDisplay() should start hidden")
	}

	if !e.IsDismissible() {
		t.Error("NewErrorDisplay() should be dismissible by default")
	}
}

func TestNewError(t *testing.T) {
	e := NewError("Connection Failed", "could not reach the endpoint")

	if !e.IsVisible() {
		t.Error("NewError() should start visible")
	}

	if e.GetTitle() != "Connection Failed" {
		t.Errorf("GetTitle() = %q, want %q", e.GetTitle(), "Connection Failed")
	}

	if e.GetMessage() != "could not reach the endpoint" {
		t.Errorf("GetMessage() = %q, want %q", e.GetMessage(), "could not reach the endpoint")
	}
}

func TestNewErrorWithSuggestions(t *testing.T) {
	suggestions := []string{"Check the URL", "Check your network"}
	e := NewErrorWithSuggestions("Connection Failed", "timeout", suggestions)

	got := e.GetSuggestions()
	if len(got) != 2 {
		t.Fatalf("GetSuggestions() returned %d items, want 2", len(got))
	}
	if got[0] != suggestions[0] {
		t.Errorf("GetSuggestions()[0] = %q, want %q", got[0], suggestions[0])
	}
}

func TestConfigLoadError(t *testing.T) {
	e := ConfigLoadError("/home/user/.config/gentor/gentor.toml", "toml: line 3: expected value")

	if !e.IsVisible() {
		t.Error("ConfigLoadError() should start visible")
	}

	if !e.IsDismissible() {
		t.Error("ConfigLoadError() should be dismissible")
	}

	if e.GetTitle() != "Configuration Error" {
		t.Errorf("GetTitle() = %q, want %q", e.GetTitle(), "Configuration Error")
	}

	if e.GetMessage() != "toml: line 3: expected value" {
		t.Errorf("GetMessage() = %q, want parse detail", e.GetMessage())
	}

	// Suggestions should point at the editor command and the file path
	foundPath := false
	foundCommand := false
	for _, s := range e.GetSuggestions() {
		if strings.Contains(s, "/home/user/.config/gentor/gentor.toml") {
			foundPath = true
		}
		if strings.Contains(s, "/setting") {
			foundCommand = true
		}
	}
	if !foundPath {
		t.Error("ConfigLoadError() suggestions should mention the file path")
	}
	if !foundCommand {
		t.Error("ConfigLoadError() suggestions should mention /setting")
	}
}

func TestErrorDisplayShowHide(t *testing.T) {
	e := NewErrorDisplay()

	e.Show()
	if !e.IsVisible() {
		t.Error("Show() should make display visible")
	}

	e.Hide()
	if e.IsVisible() {
		t.Error("Hide() should hide display")
	}
}

func TestErrorDisplayDismissWithEnter(t *testing.T) {
	e := NewError("Oops", "something broke")

	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if e.IsVisible() {
		t.Error("Enter should dismiss a dismissible error")
	}
}

func TestErrorDisplayDismissWithEsc(t *testing.T) {
	e := NewError("Oops", "something broke")

	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if e.IsVisible() {
		t.Error("Esc should dismiss a dismissible error")
	}
}

func TestErrorDisplayNotDismissible(t *testing.T) {
	e := NewError("Fatal", "cannot continue")
	e.SetDismissible(false)

	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !e.IsVisible() {
		t.Error("non-dismissible error should survive Enter")
	}
}

func TestErrorDisplayWindowSize(t *testing.T) {
	e := NewError("Oops", "something broke")

	e, _ = e.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	if e.width != 120 || e.height != 50 {
		t.Errorf("Update(WindowSizeMsg) dimensions = %dx%d, want 120x50", e.width, e.height)
	}
}

func TestErrorDisplayView(t *testing.T) {
	e := NewErrorDisplay()

	// Hidden display renders nothing
	if view := e.View(); view != "" {
		t.Errorf("View() when hidden = %q, want empty", view)
	}

	e.SetTitle("Stream Error")
	e.SetMessage("connection reset")
	e.SetSuggestions([]string{"Retry the request"})
	e.SetContext("The partial response was kept.")
	e.Show()

	view := e.View()
	if !strings.Contains(view, "Stream Error") {
		t.Error("View() should contain the title")
	}
	if !strings.Contains(view, "connection reset") {
		t.Error("View() should contain the message")
	}
	if !strings.Contains(view, "Retry the request") {
		t.Error("View() should contain suggestions")
	}
	if !strings.Contains(view, "Dismiss") {
		t.Error("View() should show the dismiss hint for dismissible errors")
	}
}

func TestErrorDisplayViewCentered(t *testing.T) {
	e := NewError("Oops", "something broke")
	e.SetSize(100, 40)

	view := e.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 40 {
		t.Errorf("View() with height should fill the terminal, got %d lines, want 40", len(lines))
	}
}

// =============================================================================
// INLINE MESSAGE TESTS
// =============================================================================

func TestInlineMessages(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
	}{
		{"InlineError", InlineError},
		{"InlineWarning", InlineWarning},
		{"InlineInfo", InlineInfo},
		{"InlineSuccess", InlineSuccess},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.render("test message")
			if !strings.Contains(out, "test message") {
				t.Errorf("%s() = %q, should contain the message", tc.name, out)
			}
		})
	}
}
