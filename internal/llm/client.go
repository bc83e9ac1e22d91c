// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm streams chat completions from OpenAI-compatible and Ollama
// endpoints.
//
// A Client is built from one settings snapshot and never mutates. Each
// Begin call returns a StreamHandle whose channel delivers zero or more
// Delta events followed by exactly one terminal event (Done, Cancelled or
// Error), then closes. Nothing is retried here; retry is a user action.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/gentor/internal/util"
)

// Configuration constants for chat endpoints.
const (
	// ProviderOpenAI selects the OpenAI-compatible SSE wire format.
	ProviderOpenAI = "openai"

	// ProviderOllama selects the Ollama NDJSON wire format.
	ProviderOllama = "ollama"

	// DefaultOpenAIURL is the base URL for the OpenAI API.
	DefaultOpenAIURL = "https://api.openai.com/v1"

	// DefaultOllamaURL is the base URL for a local Ollama instance.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultTimeout bounds non-streaming requests when the settings
	// snapshot does not say otherwise.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed non-streaming body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// maxErrorMessageRunes caps endpoint error text carried into the
	// transcript annotation. HTML error pages stay out of the UI.
	maxErrorMessageRunes = 200

	// userAgent identifies this client to the endpoint.
	userAgent = "gentor/0.1.0"
)

// Request pacing. Instant replays of queued turns are absorbed by the
// burst; sustained hammering is smoothed, never rejected.
const (
	requestsPerSecond = 2
	requestBurst      = 4
)

// sharedTransport pools connections across all clients.
// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// SECURITY: TLS verification required, TLS 1.2 minimum.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// sharedLimiter paces requests across every client. Clients are rebuilt
// per turn from the settings snapshot, so the token bucket lives here with
// the transport; a per-client bucket would reset on every turn.
var sharedLimiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst)

// =============================================================================
// OPTIONS
// =============================================================================

// Options is the value copy of the settings a single request runs under.
// Later settings edits never affect a request already holding its Options.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int // zero means let the endpoint decide
	Stream      bool
	Timeout     time.Duration
}

// normalize fills defaults and trims the base URL.
func (o *Options) normalize() {
	o.BaseURL = strings.TrimSuffix(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		if o.Provider == ProviderOllama {
			o.BaseURL = DefaultOllamaURL
		} else {
			o.BaseURL = DefaultOpenAIURL
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues chat completion requests for one settings snapshot.
type Client struct {
	opts Options

	// httpClient bounds non-streaming requests with the snapshot timeout.
	httpClient *http.Client

	// streamClient has no timeout; streaming lifetime is context-controlled.
	streamClient *http.Client

	// limiter is the process-wide sharedLimiter; pacing must survive
	// the per-turn client rebuild.
	limiter *rate.Limiter
}

// NewClient creates a client from a settings snapshot.
func NewClient(opts Options) *Client {
	opts.normalize()
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   opts.Timeout,
		},
		streamClient: &http.Client{
			Transport: sharedTransport,
			// No timeout for streaming, controlled via context.
		},
		limiter: sharedLimiter,
	}
}

// Begin starts one conversation turn. It validates arguments, spawns the
// producer and returns immediately; network activity and its failures are
// observed through the handle's events, never here.
func (c *Client) Begin(ctx context.Context, messages []ChatMessage) (*StreamHandle, error) {
	if len(messages) == 0 {
		return nil, errors.New("llm: no messages to send")
	}
	if strings.TrimSpace(c.opts.Model) == "" {
		return nil, errors.New("llm: model not configured")
	}

	streamCtx, cancel := context.WithCancel(ctx)
	h := newStreamHandle(cancel)
	go c.run(streamCtx, h, messages)
	return h, nil
}

// run is the producer goroutine for one request. It owns the event channel:
// deltas, then exactly one terminal event, then close.
func (c *Client) run(ctx context.Context, h *StreamHandle, messages []ChatMessage) {
	defer close(h.events)

	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		h.events <- terminalEvent(ctx, nil, networkError("request pacing", err))
		return
	}

	var stats *Stats
	var err error
	switch c.opts.Provider {
	case ProviderOllama:
		stats, err = c.streamOllama(ctx, h, messages, start)
	default:
		stats, err = c.streamOpenAI(ctx, h, messages, start)
	}

	h.events <- terminalEvent(ctx, stats, err)
}

// terminalEvent maps a stream outcome to its final event. Completion wins
// over a cancel that arrived too late; cancellation wins over the transport
// errors it caused.
func terminalEvent(ctx context.Context, stats *Stats, err error) StreamEvent {
	if err == nil {
		return StreamEvent{Kind: EventDone, Stats: stats}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return StreamEvent{Kind: EventCancelled}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return StreamEvent{Kind: EventError, Err: networkError("request timed out", err)}
	}

	var serr *StreamError
	if !errors.As(err, &serr) {
		serr = networkError("request failed", err)
	}
	return StreamEvent{Kind: EventError, Err: serr}
}

// =============================================================================
// OPENAI WIRE FORMAT
// =============================================================================

// streamOpenAI drives one request against a /chat/completions endpoint,
// emitting deltas as SSE frames decode.
func (c *Client) streamOpenAI(ctx context.Context, h *StreamHandle, messages []ChatMessage, start time.Time) (*Stats, error) {
	temp := c.opts.Temperature
	reqBody := chatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Stream:      c.opts.Stream,
		Temperature: &temp,
	}
	if c.opts.MaxTokens > 0 {
		reqBody.MaxTokens = c.opts.MaxTokens
	}

	if !c.opts.Stream {
		return c.completeOpenAI(ctx, h, reqBody, start)
	}

	resp, err := c.post(ctx, c.streamClient, c.endpoint("/chat/completions"), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.endpointFailure(resp)
	}

	stats := &Stats{}
	reader := newSSEReader(resp.Body)
	for {
		data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				// The endpoint must close with [DONE] or a finish
				// reason; a bare EOF is a truncated stream.
				return nil, protocolError("stream ended before completion", io.ErrUnexpectedEOF)
			}
			return nil, networkError("reading stream", err)
		}

		if isDoneSentinel(data) {
			stats.Total = time.Since(start)
			return stats, nil
		}

		var chunk openaiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, protocolError("undecodable frame", err)
		}

		if delta := chunk.content(); delta != "" {
			if stats.DeltaCount == 0 {
				stats.TTFT = time.Since(start)
			}
			stats.DeltaCount++
			if !h.send(ctx, StreamEvent{Kind: EventDelta, Delta: delta}) {
				return nil, ctx.Err()
			}
		}

		if chunk.done() {
			stats.Total = time.Since(start)
			return stats, nil
		}
	}
}

// completeOpenAI is the non-streaming fallback: one request, one response,
// surfaced as a single delta so consumers never branch on the mode.
func (c *Client) completeOpenAI(ctx context.Context, h *StreamHandle, reqBody chatRequest, start time.Time) (*Stats, error) {
	resp, err := c.post(ctx, c.httpClient, c.endpoint("/chat/completions"), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.endpointError(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, protocolError("undecodable completion response", err)
	}

	stats := &Stats{TTFT: time.Since(start), DeltaCount: 1}
	if !h.send(ctx, StreamEvent{Kind: EventDelta, Delta: parsed.content()}) {
		return nil, ctx.Err()
	}
	stats.Total = time.Since(start)
	return stats, nil
}

// =============================================================================
// OLLAMA WIRE FORMAT
// =============================================================================

// streamOllama drives one request against an /api/chat endpoint, emitting
// deltas as NDJSON lines decode.
func (c *Client) streamOllama(ctx context.Context, h *StreamHandle, messages []ChatMessage, start time.Time) (*Stats, error) {
	temp := c.opts.Temperature
	reqBody := ollamaRequest{
		Model:    c.opts.Model,
		Messages: messages,
		Stream:   c.opts.Stream,
		Options:  &ollamaOptions{Temperature: &temp},
	}
	if c.opts.MaxTokens > 0 {
		reqBody.Options.NumPredict = c.opts.MaxTokens
	}

	if !c.opts.Stream {
		return c.completeOllama(ctx, h, reqBody, start)
	}

	resp, err := c.post(ctx, c.streamClient, c.endpoint("/api/chat"), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.endpointFailure(resp)
	}

	stats := &Stats{}
	reader := newNDJSONReader(resp.Body)
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				// Ollama marks the last chunk with done:true; a bare
				// EOF is a truncated stream.
				return nil, protocolError("stream ended before completion", io.ErrUnexpectedEOF)
			}
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, protocolError("line exceeded maximum size", err)
			}
			return nil, networkError("reading stream", err)
		}

		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, protocolError("undecodable frame", err)
		}

		if chunk.Error != "" {
			return nil, endpointError(0, chunk.Error)
		}

		if delta := chunk.Message.Content; delta != "" {
			if stats.DeltaCount == 0 {
				stats.TTFT = time.Since(start)
			}
			stats.DeltaCount++
			if !h.send(ctx, StreamEvent{Kind: EventDelta, Delta: delta}) {
				return nil, ctx.Err()
			}
		}

		if chunk.Done {
			stats.Total = time.Since(start)
			return stats, nil
		}
	}
}

// completeOllama is the non-streaming fallback for the Ollama wire format.
// The response body has the same shape as a final streaming chunk.
func (c *Client) completeOllama(ctx context.Context, h *StreamHandle, reqBody ollamaRequest, start time.Time) (*Stats, error) {
	resp, err := c.post(ctx, c.httpClient, c.endpoint("/api/chat"), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.endpointError(resp.StatusCode, body)
	}

	var parsed ollamaChunk
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, protocolError("undecodable chat response", err)
	}
	if parsed.Error != "" {
		return nil, endpointError(0, parsed.Error)
	}

	stats := &Stats{TTFT: time.Since(start), DeltaCount: 1}
	if !h.send(ctx, StreamEvent{Kind: EventDelta, Delta: parsed.Message.Content}) {
		return nil, ctx.Err()
	}
	stats.Total = time.Since(start)
	return stats, nil
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

// endpoint joins the base URL with a wire-format path.
func (c *Client) endpoint(path string) string {
	return c.opts.BaseURL + path
}

// post marshals the body and issues the request with standard headers.
func (c *Client) post(ctx context.Context, client *http.Client, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llm: building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, networkError("connecting to endpoint", err)
	}
	return resp, nil
}

// setHeaders sets the required headers for chat completion requests.
// Streaming OpenAI-format requests accept SSE; everything else, including
// Ollama's NDJSON stream, answers with a JSON content type. Ollama ignores
// Authorization; OpenAI-compatible endpoints require it.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.opts.Stream && c.opts.Provider != ProviderOllama {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)

	if c.opts.APIKey != "" && c.opts.Provider != ProviderOllama {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
}

// readBody reads a response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, networkError("reading response", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, protocolError("response exceeded maximum size", nil)
	}
	return body, nil
}

// endpointFailure drains a non-200 streaming response into an endpoint
// error. The body is small for error responses, so reading it fully is
// fine even on the streaming path.
func (c *Client) endpointFailure(resp *http.Response) error {
	body, _ := readBody(resp)
	return c.endpointError(resp.StatusCode, body)
}

// endpointError builds the Error(Endpoint) value for a non-200 response,
// preferring the endpoint's own message when the body is decodable.
func (c *Client) endpointError(status int, body []byte) error {
	return endpointError(status, errorMessage(status, body))
}

// errorMessage extracts the endpoint-supplied message from an error body.
// OpenAI nests it under error.message; Ollama uses a flat error string.
// Unparseable bodies fall back to their raw text, capped for display.
func errorMessage(status int, body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		return util.TruncateRunes(msg, maxErrorMessageRunes)
	}
	return http.StatusText(status)
}
