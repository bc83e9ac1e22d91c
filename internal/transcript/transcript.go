// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the ordered conversation history for a session.
package transcript

import (
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/gentor/internal/llm"
)

// MaxMessages caps the history to prevent unbounded memory growth in very
// long sessions. Pruning drops the oldest non-system turns.
const MaxMessages = 1000

// =============================================================================
// STATE ERROR
// =============================================================================

// StateError reports a violated transcript invariant, e.g. extending a
// message that already finalized. It signals a programming fault in the
// caller and is never swallowed.
type StateError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return "transcript: " + e.Op + ": " + e.Reason
}

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the append-only conversation history. All mutation goes
// through the session controller; Snapshot may be called concurrently from
// the renderer and always observes a consistent prefix.
//
// Streamed text for the active message accumulates in a strings.Builder
// owned by the Transcript, not by the Message, so snapshot copies stay
// plain values.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	nextSeq  uint64

	// tail of the active streaming message, merged into Content on finalize
	active     strings.Builder
	activeOpen bool
}

// New creates an empty transcript. Sequence numbers start at 1.
func New() *Transcript {
	return &Transcript{nextSeq: 1}
}

// =============================================================================
// APPEND OPERATIONS
// =============================================================================

// Append adds a complete message and returns its sequence number.
func (t *Transcript) Append(role Role, content string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.appendLocked(Message{
		Role:    role,
		Content: content,
		Status:  StatusCompleted,
	})
}

// AppendStreaming adds an empty message in StatusStreaming, the target for
// subsequent ExtendLast calls. Only one streaming message may be open at a
// time.
func (t *Transcript) AppendStreaming(role Role) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeOpen {
		return 0, &StateError{Op: "append_streaming", Reason: "a streaming message is already open"}
	}

	seq := t.appendLocked(Message{
		Role:   role,
		Status: StatusStreaming,
	})
	t.active.Reset()
	t.activeOpen = true
	return seq, nil
}

// appendLocked assigns the next sequence number and stores the message.
// Caller holds t.mu.
func (t *Transcript) appendLocked(msg Message) uint64 {
	msg.Seq = t.nextSeq
	msg.Timestamp = time.Now()
	t.nextSeq++
	t.messages = append(t.messages, msg)
	t.pruneLocked()
	return msg.Seq
}

// =============================================================================
// STREAMING MUTATION
// =============================================================================

// ExtendLast appends delta text to the most recent message. It fails with
// a StateError if the last message's role does not match or the message is
// no longer the active streaming target.
func (t *Transcript) ExtendLast(role Role, delta string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.activeIndexLocked("extend_last", role); err != nil {
		return err
	}
	t.active.WriteString(delta)
	return nil
}

// FinalizeLast moves the active streaming message to a terminal status,
// merging the accumulated text into its content. The annotation and stats
// are recorded on the message.
func (t *Transcript) FinalizeLast(role Role, status Status, annotation string, stats *Stats) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !status.Terminal() {
		return &StateError{Op: "finalize_last", Reason: "finalize requires a terminal status"}
	}

	idx, err := t.activeIndexLocked("finalize_last", role)
	if err != nil {
		return err
	}

	t.messages[idx].Content = t.active.String()
	t.messages[idx].Status = status
	t.messages[idx].Annotation = annotation
	t.messages[idx].Stats = stats
	t.active.Reset()
	t.activeOpen = false
	return nil
}

// activeIndexLocked validates that the last message is the open streaming
// target with the expected role and returns its index. Caller holds t.mu.
func (t *Transcript) activeIndexLocked(op string, role Role) (int, error) {
	if len(t.messages) == 0 {
		return 0, &StateError{Op: op, Reason: "transcript is empty"}
	}
	idx := len(t.messages) - 1
	last := t.messages[idx]
	if last.Role != role {
		return 0, &StateError{Op: op, Reason: "last message role is " + string(last.Role) + ", want " + string(role)}
	}
	if last.Status.Terminal() || !t.activeOpen {
		return 0, &StateError{Op: op, Reason: "last message already finalized (" + last.Status.String() + ")"}
	}
	return idx, nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Snapshot returns a copy of the history in strictly increasing Seq order.
// The active streaming message, if any, carries the text accumulated so
// far. Safe to call concurrently with appends.
func (t *Transcript) Snapshot() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	if t.activeOpen && len(out) > 0 {
		out[len(out)-1].Content = t.active.String()
	}
	return out
}

// Last returns the most recent message (with live streamed content) and
// whether one exists.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return Message{}, false
	}
	last := t.messages[len(t.messages)-1]
	if t.activeOpen {
		last.Content = t.active.String()
	}
	return last, true
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Streaming reports whether a streaming message is currently open.
func (t *Transcript) Streaming() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeOpen
}

// Clear drops the history. Sequence numbers keep increasing across a clear
// so observers never see them move backwards.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = nil
	t.active.Reset()
	t.activeOpen = false
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// Wire converts the history to the request message sequence: the system
// prompt first (when non-empty), then every message with content, in
// order. The empty streaming placeholder is excluded: it is the reply
// being generated, not part of the prompt.
func (t *Transcript) Wire(systemPrompt string) []llm.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]llm.ChatMessage, 0, len(t.messages)+1)
	if systemPrompt != "" {
		out = append(out, llm.NewSystemMessage(systemPrompt))
	}

	for i, msg := range t.messages {
		content := msg.Content
		if t.activeOpen && i == len(t.messages)-1 {
			// Active placeholder: not part of the request.
			continue
		}
		if content == "" {
			continue
		}
		out = append(out, llm.ChatMessage{Role: string(msg.Role), Content: content})
	}

	return out
}

// =============================================================================
// PRUNING
// =============================================================================

// pruneLocked drops the oldest non-system messages once the history
// exceeds MaxMessages. Relative order is preserved so Snapshot stays in
// strict Seq order. Caller holds t.mu.
func (t *Transcript) pruneLocked() {
	if len(t.messages) <= MaxMessages {
		return
	}

	excess := len(t.messages) - MaxMessages
	kept := make([]Message, 0, MaxMessages)
	for _, msg := range t.messages {
		if excess > 0 && msg.Role != RoleSystem {
			excess--
			continue
		}
		kept = append(kept, msg)
	}
	t.messages = kept
}
