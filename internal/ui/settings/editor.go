// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings provides the mid-session settings editor overlay.
//
// The editor stages edits against a snapshot of the active settings. It
// never touches the store itself: on save it emits SaveRequestedMsg with
// the changed fields and the program shell runs them through the session
// controller, which validates, applies and persists. A validation failure
// comes back through SetError and the editor stays open with the
// offending fields marked.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/config"
	"github.com/jeranaias/gentor/internal/ui/styles"
	"github.com/jeranaias/gentor/internal/util"
)

// saveArmWindow is how long an armed save waits for the confirming Enter.
const saveArmWindow = 2 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// SaveRequestedMsg asks the shell to commit the staged edits. Edits holds
// only the fields whose values differ from the snapshot.
type SaveRequestedMsg struct {
	Edits map[string]string
}

// CancelledMsg asks the shell to close the editor without saving.
type CancelledMsg struct{}

// =============================================================================
// EDITOR MODEL
// =============================================================================

// Editor is the settings form. Focus moves over the option fields and the
// save button; saving takes two Enter presses so a stray keystroke cannot
// rewrite the settings file.
type Editor struct {
	theme  *styles.Theme
	fields []config.Field
	inputs []textinput.Model

	// focus indexes fields; len(fields) is the save button.
	focus int

	armed   bool
	armedAt time.Time

	errText   string
	badFields map[string]bool

	width  int
	height int
}

// New builds an editor over a settings snapshot.
func New(theme *styles.Theme, snap config.Settings) Editor {
	fields := snap.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.SetValue(f.Value)
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}

	e := Editor{
		theme:     theme,
		fields:    fields,
		inputs:    inputs,
		badFields: make(map[string]bool),
	}
	if len(e.inputs) > 0 {
		e.inputs[0].Focus()
	}
	return e
}

// Init starts the cursor blink on the focused field.
func (e Editor) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize records the screen dimensions for centering.
func (e *Editor) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Edits returns the staged changes: every field whose current text
// differs from the snapshot value.
func (e Editor) Edits() map[string]string {
	edits := make(map[string]string)
	for i, f := range e.fields {
		if v := e.inputs[i].Value(); v != f.Value {
			edits[f.Key] = v
		}
	}
	return edits
}

// SetError marks a failed save. Field-level validation failures highlight
// the named fields; anything else shows as a plain message.
func (e *Editor) SetError(err error) {
	e.badFields = make(map[string]bool)
	if err == nil {
		e.errText = ""
		return
	}
	e.errText = err.Error()

	var list config.ValidateErrors
	if errors.As(err, &list) {
		for _, ve := range list {
			e.badFields[ve.Field] = true
		}
		return
	}
	var single config.ValidationError
	if errors.As(err, &single) {
		e.badFields[single.Field] = true
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one Bubble Tea message.
func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.SetSize(msg.Width, msg.Height)
		return e, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return e, cancelCmd

		case "up", "shift+tab":
			return e, e.moveFocus(-1)

		case "down", "tab":
			return e, e.moveFocus(1)

		case "enter":
			return e.handleEnter()
		}
	}

	// Everything else is typing into the focused field.
	if e.focus < len(e.inputs) {
		var cmd tea.Cmd
		e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
		return e, cmd
	}
	return e, nil
}

// handleEnter advances focus on a field, arms the save button, or commits
// an armed save.
func (e Editor) handleEnter() (Editor, tea.Cmd) {
	if e.focus < len(e.fields) {
		return e, e.moveFocus(1)
	}

	if e.armed && time.Since(e.armedAt) <= saveArmWindow {
		e.armed = false
		edits := e.Edits()
		return e, func() tea.Msg {
			return SaveRequestedMsg{Edits: edits}
		}
	}

	// First press, or the arm expired.
	e.armed = true
	e.armedAt = time.Now()
	return e, nil
}

// moveFocus shifts focus by delta, clamped to the field list plus the
// save button. Any movement disarms a pending save.
func (e *Editor) moveFocus(delta int) tea.Cmd {
	e.armed = false

	next := e.focus + delta
	if next < 0 {
		next = 0
	}
	if next > len(e.fields) {
		next = len(e.fields)
	}
	if next == e.focus {
		return nil
	}

	if e.focus < len(e.inputs) {
		e.inputs[e.focus].Blur()
	}
	e.focus = next
	if e.focus < len(e.inputs) {
		return e.inputs[e.focus].Focus()
	}
	return nil
}

// Armed reports whether the save button waits for its confirming press.
func (e Editor) Armed() bool {
	return e.armed
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the editor form centered on screen.
func (e Editor) View() string {
	const labelCol = 17

	var b strings.Builder
	b.WriteString(e.theme.EditorTitle.Render("Settings"))
	b.WriteString("\n\n")

	for i, f := range e.fields {
		labelStyle := e.theme.EditorLabel
		if e.badFields[f.Key] {
			labelStyle = e.theme.ErrorStyle
		} else if i == e.focus {
			labelStyle = e.theme.EditorLabelFocused
		}

		marker := "  "
		if i == e.focus {
			marker = e.theme.InputPrompt.Render("> ")
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n",
			marker,
			labelStyle.Render(util.PadWidth(f.Key, labelCol)),
			e.theme.EditorValue.Render(e.inputs[i].View())))

		if i == e.focus && f.Help != "" {
			b.WriteString(e.theme.EditorHelp.Render(strings.Repeat(" ", labelCol+3) + f.Help))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(e.renderSaveButton())
	b.WriteString("\n")

	if e.errText != "" {
		b.WriteString("\n")
		b.WriteString(e.theme.EditorFieldError.Render("✗ " + e.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(e.theme.EditorHelp.Render("Up/Down move · Enter next · Esc cancel"))

	box := e.theme.EditorBox.Render(b.String())
	return e.center(box)
}

// renderSaveButton renders the save row in its idle, focused or armed
// state.
func (e Editor) renderSaveButton() string {
	marker := "  "
	if e.focus == len(e.fields) {
		marker = e.theme.InputPrompt.Render("> ")
	}

	if e.armed {
		return marker +
			e.theme.SaveButtonArmed.Render("[ Save ]") +
			e.theme.EditorHelp.Render(" press Enter once more to save")
	}
	return marker + e.theme.SaveButton.Render("[ Save ]")
}

// center places the box in the middle of the screen.
func (e Editor) center(box string) string {
	left := (e.width - lipgloss.Width(box)) / 2
	top := (e.height - lipgloss.Height(box)) / 2
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	return lipgloss.NewStyle().MarginLeft(left).MarginTop(top).Render(box)
}

// cancelCmd emits the editor's cancellation.
func cancelCmd() tea.Msg {
	return CancelledMsg{}
}
