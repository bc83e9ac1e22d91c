// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// thinkingFrames animates with plain ASCII so the indicator survives
// terminals without Unicode fonts.
var thinkingFrames = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// ThinkingIndicator fills the gap between submitting a prompt and the first
// streamed token: an animated frame, a "Thinking..." label, a live elapsed
// counter, and a detail line naming the model being waited on. It is driven
// by spinner.TickMsg like any bubbles spinner.
type ThinkingIndicator struct {
	anim      spinner.Model
	detail    string
	startedAt time.Time
	active    bool

	frameStyle  lipgloss.Style
	labelStyle  lipgloss.Style
	timerStyle  lipgloss.Style
	detailStyle lipgloss.Style
}

// NewThinkingIndicator creates an inactive indicator. Nothing renders until
// Start is called.
func NewThinkingIndicator() ThinkingIndicator {
	anim := spinner.New()
	anim.Spinner = thinkingFrames

	return ThinkingIndicator{
		anim:        anim,
		frameStyle:  lipgloss.NewStyle().Foreground(styles.Purple),
		labelStyle:  lipgloss.NewStyle().Foreground(styles.TextSecondary),
		timerStyle:  lipgloss.NewStyle().Foreground(styles.TextMuted),
		detailStyle: lipgloss.NewStyle().Foreground(styles.TextMuted).PaddingLeft(2),
	}
}

// Start activates the indicator, resets the elapsed clock and returns the
// command that begins the animation.
func (t *ThinkingIndicator) Start() tea.Cmd {
	t.active = true
	t.startedAt = time.Now()
	return t.anim.Tick
}

// Stop hides the indicator. Safe to call when already stopped.
func (t *ThinkingIndicator) Stop() {
	t.active = false
}

// SetDetail sets the second line, typically the model name.
func (t *ThinkingIndicator) SetDetail(detail string) {
	t.detail = detail
}

// IsActive reports whether the indicator is currently shown.
func (t *ThinkingIndicator) IsActive() bool {
	return t.active
}

// Update advances the animation. A stopped indicator swallows ticks, which
// is how the tick chain dies after Stop.
func (t ThinkingIndicator) Update(msg tea.Msg) (ThinkingIndicator, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.anim, cmd = t.anim.Update(msg)
	return t, cmd
}

// View renders one or two lines, or nothing when stopped.
func (t ThinkingIndicator) View() string {
	if !t.active {
		return ""
	}

	line := t.frameStyle.Render(t.anim.View()) +
		" " +
		t.labelStyle.Render("Thinking") +
		t.frameStyle.Render("...") +
		t.timerStyle.Render(" ("+elapsedLabel(time.Since(t.startedAt))+")")

	if t.detail == "" {
		return line
	}
	return line + "\n" + t.detailStyle.Render(t.detail)
}

// elapsedLabel renders a duration as a compact "7s" or "1m 23s".
func elapsedLabel(d time.Duration) string {
	total := int(d.Seconds())
	if total < 60 {
		return strconv.Itoa(total) + "s"
	}
	return strconv.Itoa(total/60) + "m " + strconv.Itoa(total%60) + "s"
}
