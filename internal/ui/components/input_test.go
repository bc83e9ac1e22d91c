// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

func TestNewInputArea(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)

	if got := in.Value(); got != "" {
		t.Errorf("new input Value() = %q, want empty", got)
	}
	if in.maxChars != inputCharLimit {
		t.Errorf("maxChars = %d, want %d", in.maxChars, inputCharLimit)
	}
	if !strings.Contains(in.View(), ">") {
		t.Error("View() should render the prompt")
	}
}

func TestInputAreaTyping(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)
	in.Focus()

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	if got := in.Value(); got != "hello" {
		t.Errorf("Value() after typing = %q, want %q", got, "hello")
	}

	in.Reset()
	if got := in.Value(); got != "" {
		t.Errorf("Value() after Reset = %q, want empty", got)
	}
}

func TestInputAreaCounterAppearsWithText(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)
	in.SetWidth(80)

	empty := strings.Count(in.View(), "\n")

	in.Focus()
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})

	typed := in.View()
	if strings.Count(typed, "\n") <= empty {
		t.Error("View() with text should add a counter line below the box")
	}
	if !strings.Contains(typed, "4,096 chars") {
		t.Errorf("counter should show the separated limit, got:\n%s", typed)
	}
}

func TestInputAreaCounterTiers(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)

	cases := []struct {
		name  string
		typed int
		want  string
	}{
		{"normal", 100, "100 / 4,096 chars"},
		{"warning at 75%", 3072, "[~]"},
		{"below danger", 3686, "[~]"},
		{"danger at 90%", 3687, styles.StatusIndicators.Warning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := in.counterLine(tc.typed)
			if !strings.Contains(got, tc.want) {
				t.Errorf("counterLine(%d) = %q, want it to contain %q", tc.typed, got, tc.want)
			}
		})
	}
}

func TestInputAreaWidthFloor(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)

	in.SetWidth(12)
	if in.input.Width != 20 {
		t.Errorf("inner width = %d, want floor of 20", in.input.Width)
	}

	in.SetWidth(120)
	if in.input.Width != 110 {
		t.Errorf("inner width = %d, want 110", in.input.Width)
	}
}

func TestInputAreaStreamingBorder(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)
	in.SetWidth(60)

	in.SetStreaming(true)
	if in.View() == "" {
		t.Error("View() should render while streaming")
	}

	in.SetStreaming(false)
	if in.View() == "" {
		t.Error("View() should render after the stream settles")
	}
}
