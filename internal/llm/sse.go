// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bufio"
	"io"
	"strings"
)

// =============================================================================
// SSE DECODING
// =============================================================================

// sseReader decodes text/event-stream responses. Events are separated by
// blank lines; only data: fields matter for chat completions, everything
// else (event:, id:, retry:, comments) is skipped.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// ReadEvent returns the concatenated data payload of the next event.
// Multiple data: lines within one event join with newlines per the SSE
// spec. Returns io.EOF once the stream is exhausted; a partial event at
// EOF is flushed first.
func (s *sseReader) ReadEvent() (string, error) {
	var data strings.Builder

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && data.Len() > 0 {
				return data.String(), nil
			}
			return "", err
		}

		line = strings.TrimRight(line, "\r\n")

		// Blank line ends the event.
		if line == "" {
			if data.Len() > 0 {
				return data.String(), nil
			}
			continue
		}

		// Comment lines start with a colon.
		if strings.HasPrefix(line, ":") {
			continue
		}

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			value = strings.TrimPrefix(value, " ")
			if data.Len() > 0 {
				data.WriteString("\n")
			}
			data.WriteString(value)
		}
	}
}

// doneSentinel is the OpenAI end-of-stream marker.
const doneSentinel = "[DONE]"

// isDoneSentinel reports whether the payload is the [DONE] marker.
func isDoneSentinel(data string) bool {
	return strings.TrimSpace(data) == doneSentinel
}
