// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands interprets a line of user input for the chat session.
package commands

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// PARSER
// =============================================================================

// Parse classifies one line of user input.
//
// A line whose first non-whitespace rune is / is tokenized into a command
// name and arguments; anything else is a chat message. Chat text is
// NFC-normalized so visually identical input always produces identical
// request payloads.
func Parse(line string) Command {
	trimmed := strings.TrimSpace(norm.NFC.String(line))

	if trimmed == "" {
		return Command{Kind: KindEmpty}
	}

	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: KindChat, Text: trimmed}
	}

	parts := splitCommandLine(trimmed)
	if len(parts) == 0 {
		return Command{Kind: KindEmpty}
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]

	switch name {
	case "/setting", "/settings", "/set":
		if len(args) == 0 {
			return Command{Kind: KindEnterSettingsEditor}
		}
		if len(args) == 1 {
			// An option without a value would silently clear string
			// options, so it is reported instead of guessed at.
			return Command{Kind: KindUnknown, Raw: trimmed}
		}
		return Command{
			Kind:  KindSetOption,
			Name:  args[0],
			Value: strings.Join(args[1:], " "),
		}

	case "/model", "/m":
		if len(args) == 0 {
			return Command{Kind: KindUnknown, Raw: trimmed}
		}
		return Command{
			Kind:  KindSetOption,
			Name:  "model",
			Value: strings.Join(args, " "),
		}

	case "/clear", "/c":
		return Command{Kind: KindClear}

	case "/help", "/h", "/?":
		return Command{Kind: KindHelp}

	case "/exit", "/quit", "/q":
		return Command{Kind: KindExit}
	}

	return Command{Kind: KindUnknown, Raw: trimmed}
}

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command name from input.
// e.g., "/model qwen2.5" -> "/model"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}

	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens, respecting quotes.
// Supports both single and double quotes for arguments with spaces.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			// Escape sequence inside quotes
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
