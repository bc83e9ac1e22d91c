// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands interprets a line of user input for the chat session.
//
// Parse is a pure function: it classifies input as a chat message or one of
// a closed set of slash commands, without touching any application state.
// The session controller decides what each command does.
//
// # Command Set
//
//   - /setting, /settings: open the settings editor
//   - /set <option> <value>: change one option in place
//   - /model <name>: shorthand for /set model <name>
//   - /clear: clear the conversation
//   - /help: show available commands
//   - /exit, /quit: leave the program
//
// # Usage
//
//	cmd := commands.Parse(input)
//	switch cmd.Kind {
//	case commands.KindChat:
//	    // send cmd.Text to the model
//	case commands.KindExit:
//	    // shut down
//	}
package commands
