// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the gentor TUI.
//
// The chat view owns the transcript viewport, the input area, the status
// bar, and the one-line notice row. It drives the session controller:
// submitted lines go through Controller.Submit, stream events arrive as
// Bubble Tea messages and are applied through Controller.HandleEvent, and
// rendering of streamed deltas is batched at 30fps so heavy markdown work
// never lands on the event path.
//
// The chat model never talks to a provider directly and never owns a
// goroutine. Stream pumping is requested from the program shell via
// PumpRequestMsg; the shell holds the *tea.Program reference and runs the
// pump as a tea.Cmd.
package chat
