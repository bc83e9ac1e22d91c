// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind discriminates the StreamEvent variants.
type EventKind int

const (
	// EventDelta carries an incremental fragment of assistant text.
	EventDelta EventKind = iota
	// EventDone terminates a successful stream; Stats is set.
	EventDone
	// EventCancelled terminates a cancelled stream. Delivered exactly once
	// per handle, and only after Cancel was requested.
	EventCancelled
	// EventError terminates a failed stream; Err is set.
	EventError
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventDelta:
		return "delta"
	case EventDone:
		return "done"
	case EventCancelled:
		return "cancelled"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamEvent is one observation from an in-flight request. Exactly one
// terminal event (Done, Cancelled or Error) ends every stream, after which
// the handle's channel closes.
type StreamEvent struct {
	Kind  EventKind
	Delta string       // EventDelta
	Stats *Stats       // EventDone
	Err   *StreamError // EventError
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Kind != EventDelta
}

// =============================================================================
// STREAM HANDLE
// =============================================================================

// StreamHandle identifies one in-flight request. Consumers receive events
// from Events until it closes; Cancel requests best-effort termination of
// the underlying exchange.
type StreamHandle struct {
	id     string
	events chan StreamEvent

	cancelMu   sync.Mutex
	cancelFunc context.CancelFunc
	cancelled  bool
}

// newStreamHandle creates a handle bound to the given cancel function.
func newStreamHandle(cancel context.CancelFunc) *StreamHandle {
	return &StreamHandle{
		id:         uuid.New().String(),
		events:     make(chan StreamEvent, 64),
		cancelFunc: cancel,
	}
}

// ID returns the unique request id. The session controller uses it to
// discard events from stale handles.
func (h *StreamHandle) ID() string {
	return h.id
}

// Events returns the event channel. It delivers zero or more Delta events
// followed by exactly one terminal event, then closes. Consumers must
// drain until close.
func (h *StreamHandle) Events() <-chan StreamEvent {
	return h.events
}

// Next blocks for the next event. ok is false once the stream has ended
// and the channel closed.
func (h *StreamHandle) Next(ctx context.Context) (StreamEvent, bool) {
	select {
	case <-ctx.Done():
		return StreamEvent{}, false
	case ev, ok := <-h.events:
		return ev, ok
	}
}

// send delivers a delta unless cancellation lands first. A full buffer
// never wedges Cancel because the select also watches ctx.
func (h *StreamHandle) send(ctx context.Context, ev StreamEvent) bool {
	select {
	case h.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Cancel requests early termination of the exchange. It is safe to call
// multiple times and after the stream already finished; both are no-ops.
func (h *StreamHandle) Cancel() {
	h.cancelMu.Lock()
	defer h.cancelMu.Unlock()
	if h.cancelFunc != nil {
		h.cancelFunc()
		h.cancelFunc = nil
		h.cancelled = true
	}
}

// CancelRequested reports whether Cancel has been called.
func (h *StreamHandle) CancelRequested() bool {
	h.cancelMu.Lock()
	defer h.cancelMu.Unlock()
	return h.cancelled
}
