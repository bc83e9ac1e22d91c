// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bufio"
	"bytes"
	"io"
)

// =============================================================================
// NDJSON DECODING
// =============================================================================

// maxLineSize caps a single NDJSON line. Ollama chunks carry one delta plus
// metadata; anything longer is a broken endpoint.
// SECURITY: Line size limit prevents memory exhaustion.
const maxLineSize = 1024 * 1024 // 1MB per line

// ndjsonReader decodes newline-delimited JSON responses (the Ollama wire
// format). One JSON object per line.
type ndjsonReader struct {
	scanner *bufio.Scanner
}

func newNDJSONReader(r io.Reader) *ndjsonReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &ndjsonReader{scanner: scanner}
}

// ReadLine returns the next non-empty line without its trailing newline.
// A partial line at EOF is flushed before io.EOF is reported; a line over
// maxLineSize surfaces bufio.ErrTooLong. The returned slice is only valid
// until the next call.
func (n *ndjsonReader) ReadLine() ([]byte, error) {
	for n.scanner.Scan() {
		line := bytes.TrimSpace(n.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
	if err := n.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
