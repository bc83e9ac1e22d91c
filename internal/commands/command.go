// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands interprets a line of user input for the chat session.
package commands

// =============================================================================
// COMMAND VARIANT
// =============================================================================

// Kind identifies what a parsed line asks the session to do.
type Kind int

const (
	// KindEmpty is a blank or whitespace-only line. Ignored.
	KindEmpty Kind = iota

	// KindChat is a plain message for the model. Text carries it.
	KindChat

	// KindEnterSettingsEditor opens the interactive settings editor.
	KindEnterSettingsEditor

	// KindSetOption changes a single option. Name and Value carry the edit.
	KindSetOption

	// KindClear discards the conversation history.
	KindClear

	// KindHelp shows the available commands.
	KindHelp

	// KindExit leaves the program.
	KindExit

	// KindUnknown is a slash command the interpreter does not recognize.
	// Raw carries the line; it is reported to the user, never an error
	// that halts the session.
	KindUnknown
)

// String returns the kind name for status lines and test failures.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindChat:
		return "chat"
	case KindEnterSettingsEditor:
		return "enter-settings-editor"
	case KindSetOption:
		return "set-option"
	case KindClear:
		return "clear"
	case KindHelp:
		return "help"
	case KindExit:
		return "exit"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Command is the result of parsing one input line. Only the fields named by
// the Kind are meaningful.
type Command struct {
	Kind Kind

	// Text is the chat message (KindChat).
	Text string

	// Name and Value carry an option edit (KindSetOption).
	Name  string
	Value string

	// Raw is the original line (KindUnknown).
	Raw string
}

// =============================================================================
// HELP METADATA
// =============================================================================

// HelpEntry describes one slash command for the help display.
type HelpEntry struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
}

// helpEntries lists every command the interpreter recognizes, in display
// order.
var helpEntries = []HelpEntry{
	{
		Name:        "/setting",
		Aliases:     []string{"/settings"},
		Usage:       "/setting",
		Description: "Open the settings editor",
	},
	{
		Name:        "/set",
		Usage:       "/set <option> <value>",
		Description: "Change one option, e.g. /set temperature 0.7",
	},
	{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Usage:       "/model <name>",
		Description: "Switch the chat model",
	},
	{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Usage:       "/clear",
		Description: "Clear the conversation",
	},
	{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Usage:       "/help",
		Description: "Show this help",
	},
	{
		Name:        "/exit",
		Aliases:     []string{"/quit", "/q"},
		Usage:       "/exit",
		Description: "Leave gentor",
	},
}

// HelpEntries returns the command list for rendering help.
func HelpEntries() []HelpEntry {
	entries := make([]HelpEntry, len(helpEntries))
	copy(entries, helpEntries)
	return entries
}
