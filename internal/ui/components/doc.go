// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the gentor TUI.

This package contains a collection of styled components built on top of the
Bubble Tea and Lip Gloss libraries. Each component is designed to be visually
polished and consistent with the gentor design language.

# Core Components

## Input Components

InputArea (input.go) - Single-line prompt with a character counter and a
border that signals whether a submitted line sends now or queues behind the
active stream.

## Display Components

Header (header.go) - Application header with brand, provider, and model name.
StatusBar (statusbar.go) - Bottom status bar with session state, queued input,
and last-turn statistics.
CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma.
Markdown (markdown.go) - Glamour-based markdown rendering for finalized
assistant messages.

## Progress and Feedback

ThinkingIndicator (thinking.go) - Animated wait indicator shown between
submitting a prompt and the first streamed token.
ErrorDisplay (errorbox.go) - Error messages with suggestions.

## Specialized Views

Welcome (welcome.go) - Banner shown while the conversation is empty.

# Key Types

## Theme Integration

Components that expose theme-driven styling accept a *styles.Theme;
self-contained ones build their own styles:

	theme := styles.NewTheme()
	in := components.NewInputArea(theme)

	header := components.NewHeader()
	header.SetWidth(80)
	header.SetModel("openai", "gpt-4o-mini")
	view := header.View()

## Error Handling

The error component provides error display with recovery hints:

	display := components.NewError("Settings could not be loaded", err.Error())
	display.SetSuggestions([]string{"Check gentor.toml syntax", "Delete the file to regenerate defaults"})
	view := display.Render(80)
*/
package components
