// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestThinkingIndicatorStartsHidden(t *testing.T) {
	ti := NewThinkingIndicator()

	if ti.IsActive() {
		t.Error("new indicator should be inactive")
	}
	if got := ti.View(); got != "" {
		t.Errorf("inactive View() = %q, want empty", got)
	}
}

func TestThinkingIndicatorStartStop(t *testing.T) {
	ti := NewThinkingIndicator()

	cmd := ti.Start()
	if cmd == nil {
		t.Error("Start() should return the tick command")
	}
	if !ti.IsActive() {
		t.Error("indicator should be active after Start")
	}

	ti.Stop()
	if ti.IsActive() {
		t.Error("indicator should be inactive after Stop")
	}
	if got := ti.View(); got != "" {
		t.Errorf("stopped View() = %q, want empty", got)
	}
}

func TestThinkingIndicatorViewShowsLabelAndTimer(t *testing.T) {
	ti := NewThinkingIndicator()
	ti.Start()

	view := ti.View()
	if !strings.Contains(view, "Thinking") {
		t.Errorf("View() = %q, want it to contain %q", view, "Thinking")
	}
	if !strings.Contains(view, "...") {
		t.Errorf("View() = %q, want animated dots", view)
	}
	if !strings.Contains(view, "(0s)") {
		t.Errorf("View() = %q, want elapsed counter %q", view, "(0s)")
	}
}

func TestThinkingIndicatorDetailLine(t *testing.T) {
	ti := NewThinkingIndicator()
	ti.SetDetail("llama3.2")
	ti.Start()

	view := ti.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 2 {
		t.Fatalf("View() has %d lines, want 2:\n%s", len(lines), view)
	}
	if !strings.Contains(lines[1], "llama3.2") {
		t.Errorf("detail line = %q, want it to contain the model name", lines[1])
	}

	// Without detail the indicator stays on one line.
	ti.SetDetail("")
	if got := ti.View(); strings.Contains(got, "\n") {
		t.Errorf("View() without detail = %q, want a single line", got)
	}
}

func TestThinkingIndicatorUpdateAdvancesFrame(t *testing.T) {
	ti := NewThinkingIndicator()
	ti.Start()

	before := ti.View()
	ti, cmd := ti.Update(spinner.TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("Update(tick) on an active indicator should reschedule")
	}
	after := ti.View()

	if before == after {
		t.Error("tick should advance the animation frame")
	}
}

func TestThinkingIndicatorIgnoresTicksWhenStopped(t *testing.T) {
	ti := NewThinkingIndicator()
	ti.Start()
	ti.Stop()

	ti, cmd := ti.Update(spinner.TickMsg{Time: time.Now()})
	if cmd != nil {
		t.Error("Update(tick) on a stopped indicator should not reschedule")
	}
	if ti.IsActive() {
		t.Error("tick must not reactivate a stopped indicator")
	}
}

func TestThinkingIndicatorRestartResetsClock(t *testing.T) {
	ti := NewThinkingIndicator()
	ti.Start()
	ti.Stop()

	if cmd := ti.Start(); cmd == nil {
		t.Error("restart should return a tick command")
	}
	if !strings.Contains(ti.View(), "(0s)") {
		t.Errorf("View() after restart = %q, want a fresh clock", ti.View())
	}
}

func TestElapsedLabel(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{3 * time.Second, "3s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m 0s"},
		{95 * time.Second, "1m 35s"},
		{10 * time.Minute, "10m 0s"},
		{61*time.Minute + 5*time.Second, "61m 5s"},
	}

	for _, tc := range cases {
		if got := elapsedLabel(tc.d); got != tc.want {
			t.Errorf("elapsedLabel(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
