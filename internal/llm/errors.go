// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// ErrorKind classifies a streaming failure. The session controller renders
// each kind differently but recovers from all of them.
type ErrorKind int

const (
	// ErrKindNetwork covers dial, TLS, timeout and read failures: the
	// endpoint was never reached or the connection died.
	ErrKindNetwork ErrorKind = iota
	// ErrKindEndpoint covers errors the endpoint itself reported: auth
	// failure, rate limit, invalid request. Code carries the HTTP status.
	ErrKindEndpoint
	// ErrKindProtocol covers malformed or truncated streaming frames.
	ErrKindProtocol
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindNetwork:
		return "network"
	case ErrKindEndpoint:
		return "endpoint"
	case ErrKindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNetwork matches any network-kind stream error via errors.Is.
	ErrNetwork = errors.New("network failure")

	// ErrEndpoint matches any endpoint-kind stream error via errors.Is.
	ErrEndpoint = errors.New("endpoint error")

	// ErrProtocol matches any protocol-kind stream error via errors.Is.
	ErrProtocol = errors.New("malformed stream")

	// ErrRateLimited matches endpoint-kind stream errors carrying HTTP
	// status 429.
	ErrRateLimited = errors.New("rate limited")
)

// =============================================================================
// STREAM ERROR
// =============================================================================

// StreamError is the error surfaced through StreamEvent for any failure of
// an in-flight request. None of these are retried here; retry is an
// explicit user action.
type StreamError struct {
	Kind    ErrorKind
	Code    int    // HTTP status for ErrKindEndpoint, zero otherwise
	Message string // endpoint-reported or synthesized description
	Cause   error  // underlying error, may be nil
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	switch e.Kind {
	case ErrKindEndpoint:
		if e.Code != 0 {
			return fmt.Sprintf("endpoint error (HTTP %d): %s", e.Code, e.Message)
		}
		return fmt.Sprintf("endpoint error: %s", e.Message)
	case ErrKindProtocol:
		if e.Cause != nil {
			return fmt.Sprintf("malformed stream: %s: %v", e.Message, e.Cause)
		}
		return fmt.Sprintf("malformed stream: %s", e.Message)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("network failure: %s: %v", e.Message, e.Cause)
		}
		return fmt.Sprintf("network failure: %s", e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is maps each kind onto its sentinel so callers can use errors.Is.
func (e *StreamError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == ErrKindNetwork
	case ErrEndpoint:
		return e.Kind == ErrKindEndpoint
	case ErrProtocol:
		return e.Kind == ErrKindProtocol
	case ErrRateLimited:
		return e.Kind == ErrKindEndpoint && e.Code == http.StatusTooManyRequests
	}
	return false
}

// networkError builds a network-kind StreamError.
func networkError(msg string, cause error) *StreamError {
	return &StreamError{Kind: ErrKindNetwork, Message: msg, Cause: cause}
}

// endpointError builds an endpoint-kind StreamError.
func endpointError(code int, msg string) *StreamError {
	return &StreamError{Kind: ErrKindEndpoint, Code: code, Message: msg}
}

// protocolError builds a protocol-kind StreamError.
func protocolError(msg string, cause error) *StreamError {
	return &StreamError{Kind: ErrKindProtocol, Message: msg, Cause: cause}
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNetwork reports whether err is a network-kind stream failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsEndpoint reports whether err is an endpoint-reported failure.
func IsEndpoint(err error) bool {
	return errors.Is(err, ErrEndpoint)
}

// IsProtocol reports whether err is a malformed-stream failure.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}
