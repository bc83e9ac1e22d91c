// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/gentor/internal/config"
	"github.com/jeranaias/gentor/internal/llm"
	"github.com/jeranaias/gentor/internal/session"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// PumpRequestMsg asks the program shell to start draining a stream handle.
// The shell owns the *tea.Program reference, so the pump goroutine lives
// there; the chat model only requests it.
type PumpRequestMsg struct {
	Handle *llm.StreamHandle
}

// StreamEventMsg delivers one event from the pump goroutine. HandleID
// identifies the stream so events from a finished or superseded turn are
// discarded instead of landing in the wrong message.
type StreamEventMsg struct {
	HandleID string
	Event    llm.StreamEvent
}

// StreamTickMsg fires at 30fps while a stream is active to batch delta
// redraws. Transcript content is extended on arrival; only rendering
// waits for the tick. HandleID names the stream whose chain produced the
// tick, so a chain outliving its stream stops rescheduling itself.
type StreamTickMsg struct {
	HandleID string
	Time     time.Time
}

// =============================================================================
// SETTINGS MESSAGES
// =============================================================================

// OpenEditorMsg asks the program shell to raise the settings editor
// overlay with the given snapshot.
type OpenEditorMsg struct {
	Settings config.Settings
}

// SettingsReloadedMsg reports that the settings file changed on disk and
// the store re-read it.
type SettingsReloadedMsg struct {
	Settings config.Settings
}

// WatcherErrorMsg reports a settings watcher failure. The active snapshot
// is unchanged and the session keeps running.
type WatcherErrorMsg struct {
	Err error
}

// EditorClosedMsg reports that the settings editor left the screen. Saved
// tells whether staged edits were applied; Replays carries the lines
// queued while the editor was open.
type EditorClosedMsg struct {
	Saved   bool
	Replays session.Replays
}

// SettingsPersistedMsg reports the outcome of writing the settings file.
// The edit was already live when the write started, so only the write-back
// can fail here.
type SettingsPersistedMsg struct {
	Err error
}

// =============================================================================
// NOTICE MESSAGES
// =============================================================================

// NoticeLevel selects the styling of the notice line.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// NoticeLevel values are set by whichever handler produced the notice;
// the view only picks the styling.
