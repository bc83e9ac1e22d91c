// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches streamed deltas for rendering. Deltas accumulate
// as they arrive and are released either when the batch size threshold is
// reached or when the frame interval has passed, whichever comes first.
//
// The transcript is extended the moment a delta lands; only the viewport
// re-render waits for the buffer. This caps redraws at the frame rate for
// fast streams while a slow stream still paints every delta on the next
// tick.
//
// Thread-safety: deltas arrive from the pump goroutine while Flush runs in
// the Bubble Tea loop, so every operation takes the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	deltaCount int
	lastFlush  time.Time

	batchSize  int           // deltas per forced batch
	maxFPS     int           // redraw cap
	minFlushMs time.Duration // frame interval, 1000/maxFPS
}

// Default pacing: 15 deltas per batch, 30fps redraw cap.
const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewStreamingBuffer creates a buffer with the default pacing.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a buffer with custom pacing. Out of
// range values fall back to the defaults.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}

	return &StreamingBuffer{
		batchSize:  batchSize,
		maxFPS:     maxFPS,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// Write appends one delta. Called from the pump path as events arrive.
func (sb *StreamingBuffer) Write(delta string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(delta)
	sb.deltaCount++
}

// Flush returns the accumulated content when a redraw is due: at least one
// delta pending and either the batch threshold or the frame interval
// reached. Otherwise it reports false and keeps accumulating.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.shouldFlushLocked() {
		return "", false
	}
	return sb.takeLocked(), true
}

// ForceFlush returns whatever is buffered regardless of thresholds. Called
// when a stream settles so the final deltas always render.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.takeLocked(), true
}

// shouldFlushLocked checks the flush conditions. Caller holds sb.mu.
func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.deltaCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

// takeLocked extracts the content and restarts the frame clock. Caller
// holds sb.mu.
func (sb *StreamingBuffer) takeLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.deltaCount = 0
	sb.lastFlush = time.Now()
	return content
}

// Reset discards buffered content without flushing. Called when a new turn
// takes over so leftovers from a superseded stream never render.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.deltaCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of deltas waiting to be flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.deltaCount
}

// GetConfig returns the active pacing configuration.
func (sb *StreamingBuffer) GetConfig() (batchSize, maxFPS int, minFlushMs time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minFlushMs
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd schedules the next flush tick for one specific stream. The
// chat model reschedules it for as long as that stream is the live one;
// stamping the handle ID lets a superseded chain die out instead of
// doubling the tick rate of the turn that replaced it.
func streamTickCmd(handleID string) tea.Cmd {
	return tea.Tick(time.Duration(1000/defaultMaxFPS)*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{HandleID: handleID, Time: t}
	})
}
