// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/gentor/internal/commands"
	"github.com/jeranaias/gentor/internal/config"
	"github.com/jeranaias/gentor/internal/llm"
	"github.com/jeranaias/gentor/internal/transcript"
)

// =============================================================================
// CONTROLLER STATE
// =============================================================================

// State identifies where the controller is in its turn lifecycle.
type State int

const (
	// StateIdle is the settling point reached when a turn finishes or the
	// settings editor closes. Queued input drains here; the controller
	// never rests in this state, it moves on before the lock is released.
	StateIdle State = iota

	// StateAwaitingInput means the queue is empty and the controller is
	// waiting for the user.
	StateAwaitingInput

	// StateAppending covers the moment a user line is recorded and the
	// assistant placeholder opens. It exists only inside a locked call.
	StateAppending

	// StateStreaming means one turn is in flight and deltas are landing
	// in the open assistant message.
	StateStreaming

	// StateCancelling means cancellation was requested and the controller
	// is waiting for the stream's terminal event. Deltas still apply
	// until that event arrives.
	StateCancelling

	// StateEditingSettings means the settings editor owns the screen.
	// Submitted lines queue until it closes.
	StateEditingSettings

	// StateShuttingDown means the session is over. Input is ignored.
	StateShuttingDown
)

// String returns the state name for status lines and test failures.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateAppending:
		return "appending"
	case StateStreaming:
		return "streaming"
	case StateCancelling:
		return "cancelling"
	case StateEditingSettings:
		return "editing-settings"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// =============================================================================
// OUTCOMES
// =============================================================================

// OutcomeKind classifies what a submitted line did.
type OutcomeKind int

const (
	// OutcomeNone means the line was blank or arrived after shutdown.
	OutcomeNone OutcomeKind = iota

	// OutcomeTurnStarted means a chat turn is now streaming. Handle
	// carries the stream for the caller to pump.
	OutcomeTurnStarted

	// OutcomeTurnFailed means the turn could not start. The assistant
	// message was finalized with the failure.
	OutcomeTurnFailed

	// OutcomeQueued means the line was held for replay because a turn
	// was in flight or the editor was open.
	OutcomeQueued

	// OutcomeEditorOpened means the settings editor should take over.
	OutcomeEditorOpened

	// OutcomeOptionSet means a /set edit was applied.
	OutcomeOptionSet

	// OutcomeOptionRejected means a /set edit failed validation and
	// nothing changed.
	OutcomeOptionRejected

	// OutcomeCleared means the conversation history was discarded.
	OutcomeCleared

	// OutcomeHelp asks the caller to display the command reference.
	OutcomeHelp

	// OutcomeExit asks the caller to leave the program.
	OutcomeExit

	// OutcomeUnknown reports an unrecognized slash command.
	OutcomeUnknown

	// OutcomeFault reports a conversation sequencing error. The session
	// stays usable; Err carries the details.
	OutcomeFault
)

// String returns the outcome name for status lines and test failures.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNone:
		return "none"
	case OutcomeTurnStarted:
		return "turn-started"
	case OutcomeTurnFailed:
		return "turn-failed"
	case OutcomeQueued:
		return "queued"
	case OutcomeEditorOpened:
		return "editor-opened"
	case OutcomeOptionSet:
		return "option-set"
	case OutcomeOptionRejected:
		return "option-rejected"
	case OutcomeCleared:
		return "cleared"
	case OutcomeHelp:
		return "help"
	case OutcomeExit:
		return "exit"
	case OutcomeUnknown:
		return "unknown-command"
	case OutcomeFault:
		return "fault"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome reports what Submit did with one line.
type Outcome struct {
	Kind OutcomeKind

	// Handle is the live stream when Kind is OutcomeTurnStarted.
	Handle *llm.StreamHandle

	// Queued is the queue depth after an OutcomeQueued push.
	Queued int

	// Notice is a short line for the user: a /set confirmation, the
	// unknown-command report, or the failure reason.
	Notice string

	// Settings is the active snapshot for OutcomeEditorOpened and
	// OutcomeOptionSet.
	Settings config.Settings

	// Err carries the failure for OutcomeTurnFailed, OutcomeOptionRejected
	// and OutcomeFault.
	Err error
}

// Replay pairs a queued line with the outcome of replaying it.
type Replay struct {
	Line    string
	Outcome Outcome
}

// Replays is the ordered record of queued lines drained after a turn
// finished or the editor closed.
type Replays []Replay

// NextHandle returns the stream started during the drain, if any. At most
// one replay can start a turn because the drain stops there.
func (rs Replays) NextHandle() *llm.StreamHandle {
	for _, r := range rs {
		if r.Outcome.Kind == OutcomeTurnStarted {
			return r.Outcome.Handle
		}
	}
	return nil
}

// =============================================================================
// SESSION CONTROLLER
// =============================================================================

// Controller owns the conversation state machine. It is the only writer of
// the transcript and the settings store, and it holds at most one stream
// handle at a time. All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	state      State
	transcript *transcript.Transcript
	store      *config.Store

	// Turn in flight. active is nil outside Streaming and Cancelling.
	active     *llm.StreamHandle
	stats      *transcript.Stats
	deltaCount int

	// Input submitted while busy, replayed in order once the turn settles.
	queue *inputQueue

	// lastTurn is the formatted stats of the last completed turn.
	lastTurn string

	// lastFailed is true when the most recent turn ended in error. It
	// holds until the next turn starts or the history is cleared.
	lastFailed bool
}

// NewController wires a transcript and a settings store into a controller
// resting in StateAwaitingInput.
func NewController(t *transcript.Transcript, store *config.Store) *Controller {
	return &Controller{
		state:      StateAwaitingInput,
		transcript: t,
		store:      store,
		queue:      newInputQueue(),
	}
}

// clientFor builds a per-turn client from a settings snapshot. Each turn
// reads the store exactly once, so edits made mid-stream never touch the
// flight in progress.
func clientFor(cfg config.Settings) *llm.Client {
	return llm.NewClient(llm.Options{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Stream:      cfg.Stream,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// =============================================================================
// INPUT HANDLING
// =============================================================================

// Submit routes one line of user input. While a turn is in flight or the
// editor is open, every line queues for replay instead of executing, so no
// submitted line is ever lost.
func (c *Controller) Submit(line string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.submitLocked(line)
	if c.state == StateIdle {
		// A turn failed to start; settle back to rest.
		c.settleLocked()
	}
	return out
}

func (c *Controller) submitLocked(line string) Outcome {
	cmd := commands.Parse(line)
	if cmd.Kind == commands.KindEmpty || c.state == StateShuttingDown {
		return Outcome{Kind: OutcomeNone}
	}

	switch c.state {
	case StateStreaming, StateCancelling, StateEditingSettings:
		c.queue.Push(line)
		return Outcome{Kind: OutcomeQueued, Queued: c.queue.Len()}
	}

	switch cmd.Kind {
	case commands.KindChat:
		return c.startTurnLocked(cmd.Text)
	case commands.KindEnterSettingsEditor:
		c.state = StateEditingSettings
		return Outcome{Kind: OutcomeEditorOpened, Settings: c.store.Get()}
	case commands.KindSetOption:
		return c.setOptionLocked(cmd.Name, cmd.Value)
	case commands.KindClear:
		c.transcript.Clear()
		c.lastFailed = false
		return Outcome{Kind: OutcomeCleared, Notice: "history cleared"}
	case commands.KindHelp:
		return Outcome{Kind: OutcomeHelp}
	case commands.KindExit:
		c.shutdownLocked()
		return Outcome{Kind: OutcomeExit}
	default:
		name := commands.ExtractCommandName(cmd.Raw)
		return Outcome{
			Kind:   OutcomeUnknown,
			Notice: fmt.Sprintf("unknown command %s, try /help", name),
		}
	}
}

// startTurnLocked records the user line, opens the assistant placeholder
// and spawns the stream. The settings snapshot is taken here; edits made
// while the turn is in flight apply to the next one.
func (c *Controller) startTurnLocked(text string) Outcome {
	c.state = StateAppending
	c.lastFailed = false
	c.transcript.Append(transcript.RoleUser, text)

	if _, err := c.transcript.AppendStreaming(transcript.RoleAssistant); err != nil {
		c.state = StateIdle
		return Outcome{Kind: OutcomeFault, Notice: err.Error(), Err: err}
	}

	snap := c.store.Get()
	handle, err := clientFor(snap).Begin(context.Background(), c.transcript.Wire(snap.SystemPrompt))
	if err != nil {
		// Close the placeholder with the failure so the transcript
		// shows what happened to this turn.
		_ = c.transcript.FinalizeLast(transcript.RoleAssistant, transcript.StatusError, err.Error(), nil)
		c.state = StateIdle
		c.lastFailed = true
		return Outcome{Kind: OutcomeTurnFailed, Notice: err.Error(), Err: err}
	}

	c.active = handle
	c.stats = transcript.NewStats()
	c.deltaCount = 0
	c.state = StateStreaming
	return Outcome{Kind: OutcomeTurnStarted, Handle: handle}
}

// setOptionLocked runs a single /set edit through the store's validate
// then swap sequence. The new value is live as soon as this returns; the
// write-back to disk is the caller's PersistSettings step, kept off the
// session lock.
func (c *Controller) setOptionLocked(name, value string) Outcome {
	snap, err := c.store.Propose(map[string]string{name: value})
	if err != nil {
		return Outcome{Kind: OutcomeOptionRejected, Notice: err.Error(), Err: err}
	}

	return Outcome{
		Kind:     OutcomeOptionSet,
		Notice:   fmt.Sprintf("%s set to %s", name, displayValue(snap, name, value)),
		Settings: snap,
	}
}

// displayValue masks secret options in notices.
func displayValue(cfg config.Settings, name, value string) string {
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for _, f := range cfg.Fields() {
		if f.Key == key && f.Secret {
			return "[REDACTED]"
		}
	}
	return value
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventResult reports what one stream event did to the session.
type EventResult struct {
	// Applied means a delta landed in the open assistant message.
	Applied bool

	// Finished means the event was terminal and the turn is over. Status
	// and Stats describe how it ended.
	Finished bool
	Status   transcript.Status
	Stats    *transcript.Stats

	// Notice is the annotation attached to the finalized message, such
	// as "interrupted" or the failure description.
	Notice string

	// Replays records queued lines drained after the turn finished.
	Replays Replays

	// Err reports a conversation sequencing fault. A failing stream is
	// not a fault; it arrives through Status and Notice.
	Err error
}

// HandleEvent applies one event from the stream identified by handleID.
// Events from any other stream are stale and ignored, which is what makes
// a delta that raced past cancellation harmless once the turn is over.
func (c *Controller) HandleEvent(handleID string, ev llm.StreamEvent) EventResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.ID() != handleID {
		return EventResult{}
	}

	switch ev.Kind {
	case llm.EventDelta:
		return c.applyDeltaLocked(ev.Delta)
	case llm.EventDone:
		return c.finishTurnLocked(transcript.StatusCompleted, "", ev.Stats)
	case llm.EventCancelled:
		return c.finishTurnLocked(transcript.StatusCancelled, "interrupted", nil)
	case llm.EventError:
		msg := "stream failed"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		return c.finishTurnLocked(transcript.StatusError, msg, nil)
	default:
		return EventResult{}
	}
}

// applyDeltaLocked extends the open assistant message. Deltas keep landing
// during Cancelling; the producer stops on its own and the terminal event
// settles the turn.
func (c *Controller) applyDeltaLocked(delta string) EventResult {
	if delta == "" {
		return EventResult{}
	}
	if err := c.transcript.ExtendLast(transcript.RoleAssistant, delta); err != nil {
		return EventResult{Err: err}
	}
	if c.stats != nil {
		c.stats.RecordFirstDelta()
	}
	c.deltaCount++
	return EventResult{Applied: true}
}

// finishTurnLocked closes the open assistant message, releases the handle
// and drains any input queued while the turn was in flight.
func (c *Controller) finishTurnLocked(status transcript.Status, annotation string, wire *llm.Stats) EventResult {
	stats := c.stats
	if stats != nil {
		stats.Finalize(c.deltaCount)
		if wire != nil {
			// Producer timings are measured at the socket.
			stats.TTFT = wire.TTFT
			stats.TotalDuration = wire.Total
		}
	}

	err := c.transcript.FinalizeLast(transcript.RoleAssistant, status, annotation, stats)

	c.active = nil
	c.stats = nil
	c.deltaCount = 0
	c.state = StateIdle
	c.lastFailed = status == transcript.StatusError
	if status == transcript.StatusCompleted && stats != nil {
		c.lastTurn = stats.Format()
	}

	return EventResult{
		Finished: true,
		Status:   status,
		Stats:    stats,
		Notice:   annotation,
		Replays:  c.settleLocked(),
		Err:      err,
	}
}

// =============================================================================
// QUEUE DRAIN
// =============================================================================

// settleLocked replays queued lines in order until one starts a turn,
// opens the editor, shuts the session down, or the queue empties. With an
// empty queue the controller comes to rest in StateAwaitingInput.
func (c *Controller) settleLocked() Replays {
	var replays Replays
	for c.state == StateIdle {
		line, ok := c.queue.Pop()
		if !ok {
			c.state = StateAwaitingInput
			break
		}
		replays = append(replays, Replay{Line: line, Outcome: c.submitLocked(line)})
	}
	return replays
}

// =============================================================================
// INTERRUPTION
// =============================================================================

// Interrupt requests cancellation of the turn in flight. It reports true
// when cancellation was newly requested; pressing again while already
// cancelling does nothing.
func (c *Controller) Interrupt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStreaming || c.active == nil {
		return false
	}
	c.state = StateCancelling
	c.active.Cancel()
	return true
}

// =============================================================================
// SETTINGS EDITOR
// =============================================================================

// EditResult reports how a settings editor operation ended.
type EditResult struct {
	// Settings is the active snapshot after the operation.
	Settings config.Settings

	// Saved means the edits were validated and applied. The write-back
	// to disk runs separately through PersistSettings.
	Saved bool

	// Closed means the editor should leave the screen. A validation
	// failure keeps it open for another attempt.
	Closed bool

	// Replays records lines queued while the editor was open.
	Replays Replays

	// Err carries the validation failure.
	Err error
}

// CommitEdits validates and applies the editor's staged values and closes
// the editor. Validation failure keeps the editor open with Err naming
// the rejected fields. The applied snapshot is live immediately; writing
// it to disk is the caller's PersistSettings step.
func (c *Controller) CommitEdits(edits map[string]string) EditResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEditingSettings {
		return EditResult{Settings: c.store.Get()}
	}

	snap, err := c.store.Propose(edits)
	if err != nil {
		return EditResult{Settings: c.store.Get(), Err: err}
	}

	res := EditResult{Settings: snap, Saved: true, Closed: true}
	c.state = StateIdle
	res.Replays = c.settleLocked()
	return res
}

// PersistSettings writes the active settings snapshot to its file. The
// store does its own locking, so this never holds the session lock and
// can run from a command while input keeps flowing.
func (c *Controller) PersistSettings() error {
	return c.store.Persist()
}

// CancelEdit closes the editor without touching the settings.
func (c *Controller) CancelEdit() EditResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEditingSettings {
		return EditResult{Settings: c.store.Get()}
	}

	c.state = StateIdle
	return EditResult{
		Settings: c.store.Get(),
		Closed:   true,
		Replays:  c.settleLocked(),
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown cancels any turn in flight and ends the session. Safe to call
// more than once.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownLocked()
}

func (c *Controller) shutdownLocked() {
	if c.active != nil {
		c.active.Cancel()
		c.active = nil
	}
	if c.transcript.Streaming() {
		stats := c.stats
		if stats != nil {
			stats.Finalize(c.deltaCount)
		}
		_ = c.transcript.FinalizeLast(transcript.RoleAssistant, transcript.StatusCancelled, "interrupted", stats)
	}
	c.stats = nil
	c.deltaCount = 0
	c.state = StateShuttingDown
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// State reports where the controller is in its turn lifecycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript exposes the conversation for rendering. Callers read through
// Snapshot and never mutate.
func (c *Controller) Transcript() *transcript.Transcript {
	return c.transcript
}

// Settings returns the active settings snapshot.
func (c *Controller) Settings() config.Settings {
	return c.store.Get()
}

// Pending returns how many submitted lines wait for replay.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// Active returns the handle of the turn in flight, or nil.
func (c *Controller) Active() *llm.StreamHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Status is a point-in-time snapshot for the status bar.
type Status struct {
	State    State
	Provider string
	Model    string
	Queued   int
	Unsaved  bool
	LastTurn string

	// Failed reports that the most recent turn ended in error and no
	// turn has started since.
	Failed bool
}

// GetStatus returns the current session status.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.store.Get()
	return Status{
		State:    c.state,
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Queued:   c.queue.Len(),
		Unsaved:  c.store.Unsaved(),
		LastTurn: c.lastTurn,
		Failed:   c.lastFailed,
	}
}
