// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// inputQueue holds raw input lines submitted while the controller was
// busy. Order is first in, first out. The controller's lock guards it, so
// there is no locking here.
type inputQueue struct {
	lines []string
}

func newInputQueue() *inputQueue {
	return &inputQueue{}
}

// Push appends one raw line.
func (q *inputQueue) Push(line string) {
	q.lines = append(q.lines, line)
}

// Pop removes and returns the oldest line.
func (q *inputQueue) Pop() (string, bool) {
	if len(q.lines) == 0 {
		return "", false
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line, true
}

// Len returns the queue depth.
func (q *inputQueue) Len() int {
	return len(q.lines)
}
