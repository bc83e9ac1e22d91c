// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

// =============================================================================
// INPUT LINE
// =============================================================================

// inputCharLimit caps a single prompt line. Matches the queue replay path,
// which never splits lines.
const inputCharLimit = 4096

// counterPrinter adds thousands separators to the character counter.
var counterPrinter = message.NewPrinter(language.English)

// InputArea is the single-line prompt at the bottom of the chat view. It
// wraps a bubbles textinput in a bordered box and adds a character counter
// once the user starts typing. The border color tracks where a submitted
// line will go: cyan sends immediately, amber queues behind the stream in
// flight.
type InputArea struct {
	input     textinput.Model
	maxChars  int
	width     int
	streaming bool
	theme     *styles.Theme
}

// NewInputArea creates the prompt line.
func NewInputArea(theme *styles.Theme) *InputArea {
	ti := textinput.New()
	ti.Placeholder = "Type your message or '/setting' to edit config..."
	ti.CharLimit = inputCharLimit
	ti.Width = 70
	ti.Prompt = "> "

	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return &InputArea{
		input:    ti,
		maxChars: inputCharLimit,
		width:    80,
		theme:    theme,
	}
}

// Focus places the cursor in the input and starts it blinking.
func (i *InputArea) Focus() tea.Cmd {
	return i.input.Focus()
}

// SetWidth resizes the box. The inner text field keeps room for the prompt
// and the border.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	inner := width - 10
	if inner < 20 {
		inner = 20
	}
	i.input.Width = inner
}

// SetStreaming switches the border between send-now and will-queue.
func (i *InputArea) SetStreaming(on bool) {
	i.streaming = on
}

// Value returns the typed line.
func (i *InputArea) Value() string {
	return i.input.Value()
}

// Reset clears the typed line.
func (i *InputArea) Reset() {
	i.input.Reset()
}

// Update forwards key and blink messages to the text field.
func (i *InputArea) Update(msg tea.Msg) (*InputArea, tea.Cmd) {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return i, cmd
}

// View renders the bordered input, plus the counter line once the user has
// typed something.
func (i *InputArea) View() string {
	border := styles.Cyan
	if i.streaming {
		border = styles.Amber
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(i.width - 2).
		Render(i.input.View())

	typed := len([]rune(i.input.Value()))
	if typed == 0 {
		return box
	}

	counter := lipgloss.NewStyle().
		Width(i.width - 4).
		Align(lipgloss.Right).
		Render(i.counterLine(typed))

	return lipgloss.JoinVertical(lipgloss.Left, box, counter)
}

// counterLine renders "1,234 / 4,096 chars", tinted by how close the line
// is to the limit. Integer math: typed*10 >= max*9 is the 90% boundary.
// ACCESSIBILITY: The danger tier pairs color with a shape indicator.
func (i *InputArea) counterLine(typed int) string {
	text := counterPrinter.Sprintf("%d / %d chars", typed, i.maxChars)

	switch {
	case typed*10 >= i.maxChars*9:
		return i.theme.CharCountDanger.Bold(true).Render(text + " " + styles.StatusIndicators.Warning)
	case typed*4 >= i.maxChars*3:
		return i.theme.CharCountWarning.Render(text + " [~]")
	default:
		return i.theme.CharCount.Render(text)
	}
}
