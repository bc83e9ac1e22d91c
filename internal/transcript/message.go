// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the ordered conversation history for a session.
package transcript

import (
	"fmt"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Gentor"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status tracks the lifecycle of a message. Only the last message of a
// transcript may be StatusStreaming; every terminal status freezes the
// message forever.
type Status int

const (
	// StatusStreaming marks the active streaming target. Its content may
	// still grow through ExtendLast.
	StatusStreaming Status = iota
	// StatusCompleted marks a finished message.
	StatusCompleted
	// StatusCancelled marks a message finalized with partial content after
	// a user interrupt.
	StatusCancelled
	// StatusError marks a message whose stream failed; Annotation carries
	// the error summary.
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status freezes a message.
func (s Status) Terminal() bool {
	return s != StatusStreaming
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry of the conversation. Messages are handed out by
// value from Snapshot; a message in a terminal status never changes.
type Message struct {
	// Seq is the position in conversation order, strictly increasing,
	// assigned at append time.
	Seq uint64

	Role      Role
	Content   string
	Status    Status
	Timestamp time.Time

	// Annotation is an inline marker rendered with the message:
	// "interrupted" after a cancel, the error summary after a failure.
	Annotation string

	// Stats is set when an assistant message finalizes.
	Stats *Stats
}

// Interrupted reports whether the message was cut short by the user.
func (m Message) Interrupted() bool {
	return m.Status == StatusCancelled
}

// Failed reports whether the message's stream ended in an error.
func (m Message) Failed() bool {
	return m.Status == StatusError
}

// Preview returns a truncated single-purpose preview of the content,
// rune-safe for multi-byte text.
func (m Message) Preview(maxRunes int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxRunes {
		return m.Content
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// =============================================================================
// STATS TYPE
// =============================================================================

// Stats holds timing information for one assistant turn.
type Stats struct {
	StartTime      time.Time
	FirstDeltaTime time.Time
	EndTime        time.Time

	// DeltaCount is the number of non-empty deltas applied.
	DeltaCount int

	// Derived on Finalize.
	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStats creates a Stats with the start time set.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// RecordFirstDelta records when the first delta arrived. Subsequent calls
// are no-ops.
func (s *Stats) RecordFirstDelta() {
	if s.FirstDeltaTime.IsZero() {
		s.FirstDeltaTime = time.Now()
		s.TTFT = s.FirstDeltaTime.Sub(s.StartTime)
	}
}

// Finalize computes the derived metrics.
func (s *Stats) Finalize(deltaCount int) {
	s.EndTime = time.Now()
	s.DeltaCount = deltaCount
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// Format renders the stats for the status bar,
// e.g. "2.5s | 128 deltas | TTFT 234ms".
func (s *Stats) Format() string {
	if s.TotalDuration == 0 {
		return ""
	}

	var total string
	if s.TotalDuration < time.Second {
		total = fmt.Sprintf("%dms", s.TotalDuration.Milliseconds())
	} else {
		total = fmt.Sprintf("%.1fs", s.TotalDuration.Seconds())
	}

	return fmt.Sprintf("%s | %d deltas | TTFT %dms", total, s.DeltaCount, s.TTFT.Milliseconds())
}
