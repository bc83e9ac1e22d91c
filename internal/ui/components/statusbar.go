// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/ui/styles"
	"github.com/jeranaias/gentor/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusCancelling
	StatusEditing
	StatusError
	StatusClosing
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusCancelling:
		return "Cancelling..."
	case StatusEditing:
		return "Editing settings"
	case StatusError:
		return "Error"
	case StatusClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// Icon returns a one-character badge for the status.
// ACCESSIBILITY: Distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusCancelling:
		return styles.StatusIndicators.Warning
	case StatusEditing:
		return styles.StatusIndicators.Info
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusClosing:
		return "-"
	default:
		return "?"
	}
}

// statusTints maps each status onto its high contrast accent.
var statusTints = map[Status]lipgloss.AdaptiveColor{
	StatusReady:      styles.SuccessHighContrast,
	StatusStreaming:  styles.InfoHighContrast,
	StatusCancelling: styles.WarningHighContrast,
	StatusEditing:    styles.WarningHighContrast,
	StatusError:      styles.ErrorHighContrast,
	StatusClosing:    styles.TextMuted,
}

// StatusBar is the bottom strip: session state, active model, queued input
// count, the unsaved-settings marker and the last turn's statistics. The
// layout tier comes from the theme so the bar always agrees with the rest
// of the chrome about what "narrow" means.
type StatusBar struct {
	Provider string
	Model    string
	Status   Status
	Queued   int
	Unsaved  bool
	LastTurn string
	Width    int

	theme    *styles.Theme
	provider lipgloss.Style
	model    lipgloss.Style
	unsaved  lipgloss.Style
	badge    lipgloss.Style
	strip    lipgloss.Style
	sep      string
}

// NewStatusBar creates the bar in the Ready state.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:   StatusReady,
		Width:    80,
		theme:    theme,
		provider: lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true),
		model:    lipgloss.NewStyle().Foreground(styles.TextSecondary),
		unsaved:  lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true),
		badge:    lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true),
		strip: lipgloss.NewStyle().
			Background(styles.SurfaceDim).
			Foreground(styles.TextSecondary).
			Padding(0, 1),
		sep: lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | "),
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetModel updates the provider and model display.
func (s *StatusBar) SetModel(provider, model string) {
	s.Provider = provider
	s.Model = model
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetQueued updates the pending input count.
func (s *StatusBar) SetQueued(n int) {
	s.Queued = n
}

// SetUnsaved updates the unsaved-settings marker.
func (s *StatusBar) SetUnsaved(unsaved bool) {
	s.Unsaved = unsaved
}

// SetLastTurn updates the last-turn statistics line.
func (s *StatusBar) SetLastTurn(stats string) {
	s.LastTurn = stats
}

// View renders the bar for the current layout tier.
func (s *StatusBar) View() string {
	switch s.theme.GetLayoutMode() {
	case styles.LayoutNarrow:
		return s.viewNarrow()
	case styles.LayoutMedium:
		return s.viewMedium()
	default:
		return s.viewWide()
	}
}

// viewNarrow: [O] [OK] q:2 *
func (s *StatusBar) viewNarrow() string {
	var parts []string
	if s.Provider != "" {
		initial := strings.ToUpper(string([]rune(s.Provider)[0]))
		parts = append(parts, "["+s.provider.Render(initial)+"]")
	}
	parts = append(parts, s.statusStyle().Render(s.Status.Icon()))
	if s.Queued > 0 {
		parts = append(parts, s.queueBadge())
	}
	if s.Unsaved {
		parts = append(parts, s.unsaved.Render("*"))
	}
	return s.strip.Width(s.Width).Render(strings.Join(parts, " "))
}

// viewMedium: provider | model | Ready | q:2 | [!] unsaved
func (s *StatusBar) viewMedium() string {
	var parts []string
	if s.Provider != "" {
		parts = append(parts, s.provider.Render(s.Provider))
	}
	if s.Model != "" {
		parts = append(parts, s.model.Render(util.TruncateRunes(s.Model, 15)))
	}
	parts = append(parts, s.statusStyle().Render(s.Status.String()))
	if s.Queued > 0 {
		parts = append(parts, s.queueBadge())
	}
	if s.Unsaved {
		parts = append(parts, s.unsaved.Render(styles.StatusIndicators.Warning+" unsaved"))
	}
	return s.strip.Width(s.Width).Render(strings.Join(parts, s.sep))
}

// viewWide: PROVIDER | model | [!] unsaved   last 2.5s · 128 deltas   Ready ^L clear ^C quit
// The last-turn stats sit centered between the two ends and drop out when
// they no longer fit, so the ends never get pushed off screen.
func (s *StatusBar) viewWide() string {
	var left []string
	if s.Provider != "" {
		left = append(left, s.provider.Render(strings.ToUpper(s.Provider)))
	}
	if s.Model != "" {
		left = append(left, s.model.Render(s.Model))
	}
	if s.Unsaved {
		left = append(left, s.unsaved.Render(styles.StatusIndicators.Warning+" unsaved"))
	}
	leftPart := strings.Join(left, s.sep)

	var right []string
	if s.Queued > 0 {
		right = append(right, s.queueBadge())
	}
	right = append(right, s.statusStyle().Render(s.Status.String()), s.shortcutHints())
	rightPart := strings.Join(right, " ")

	gap := s.Width - 2 - lipgloss.Width(leftPart) - lipgloss.Width(rightPart)
	if gap < 1 {
		gap = 1
	}

	middle := s.lastTurnStats()
	if w := lipgloss.Width(middle); middle == "" || gap < w+2 {
		middle = strings.Repeat(" ", gap)
	} else {
		lead := (gap - w) / 2
		middle = strings.Repeat(" ", lead) + middle + strings.Repeat(" ", gap-w-lead)
	}

	return s.strip.
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Width(s.Width).
		Render(leftPart + middle + rightPart)
}

// ==========================================================================
// PIECES
// ==========================================================================

// queueBadge renders the pending-input counter.
// ACCESSIBILITY: Count plus shape, never color alone
func (s *StatusBar) queueBadge() string {
	return s.badge.Render("q:" + strconv.Itoa(s.Queued))
}

// shortcutHints lists the chords that matter in the current state. While a
// turn is in flight C-c interrupts instead of quitting, so the quit hint
// switches to the force chord.
func (s *StatusBar) shortcutHints() string {
	key, desc := s.theme.ShortcutKey, s.theme.ShortcutDesc
	if s.Status == StatusStreaming || s.Status == StatusCancelling {
		return key.Render("Esc") + " " + desc.Render("stop") + "  " + key.Render("C-q") + " " + desc.Render("quit")
	}
	return key.Render("C-l") + " " + desc.Render("clear") + "  " + key.Render("C-c") + " " + desc.Render("quit")
}

// lastTurnStats renders the center section, empty until a turn completes.
func (s *StatusBar) lastTurnStats() string {
	if s.LastTurn == "" {
		return ""
	}
	return s.theme.StatsLabel.Render("last ") + s.theme.StatsValue.Render(s.LastTurn)
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	tint, ok := statusTints[s.Status]
	if !ok {
		tint = styles.TextMuted
	}
	st := lipgloss.NewStyle().Foreground(tint)
	if s.Status != StatusClosing {
		st = st.Bold(true)
	}
	return st
}
