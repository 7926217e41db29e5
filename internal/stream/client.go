// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jeranaias/parley/internal/logging"
)

// =============================================================================
// CLIENT CONSTANTS
// =============================================================================

const (
	// DefaultRequestTimeout bounds a completion request before it is aborted.
	DefaultRequestTimeout = 20 * time.Second

	// DefaultCancelGrace is how long a stream must run before the UI offers
	// the user a cancel action.
	DefaultCancelGrace = 5 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultRequestTimeout,
	}

	// sharedStreamingClient is used for streaming requests (no timeout,
	// context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		// No timeout for streaming - controlled via context
	}
)

// ErrNotConfigured is returned when the client has no endpoint set.
var ErrNotConfigured = errors.New("chat endpoint not configured")

// =============================================================================
// COMPLETION CLIENT
// =============================================================================

// Client performs chat completion requests against the configured backend.
// The zero value is not usable; construct with NewClient.
type Client struct {
	completionURL string
	streamURL     string
	timeout       time.Duration
	httpClient    *http.Client
	streamClient  *http.Client
	log           logging.Logger
}

// NewClient creates a client for the given completion and streaming
// endpoints. Either may be empty if the corresponding mode is unused.
func NewClient(completionURL, streamURL string, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		completionURL: completionURL,
		streamURL:     streamURL,
		timeout:       DefaultRequestTimeout,
		httpClient:    sharedHTTPClient,
		streamClient:  sharedStreamingClient,
		log:           log.With("stream"),
	}
}

// SetTimeout overrides the completion request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// completionRequest is the wire shape of an outbound chat call.
type completionRequest struct {
	Message string `json:"message"`
}

// Response is a parsed completion reply. Query, when present, asks the
// front end to open its search panel with that query.
type Response struct {
	Message string `json:"message"`
	Query   string `json:"query,omitempty"`
}

// Complete sends a single chat message and returns the parsed reply.
//
// Accepted response shapes, in order of preference: {message, query},
// {message}, or any other JSON document (stringified into Message as a
// fallback). The request is aborted after the configured timeout.
func (c *Client) Complete(ctx context.Context, message string) (*Response, error) {
	if c.completionURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(completionRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, excerpt(raw, 200))
	}

	return parseCompletion(raw), nil
}

// parseCompletion interprets the reply body, falling back to stringifying
// arbitrary JSON so an unknown shape still yields displayable text.
func parseCompletion(raw []byte) *Response {
	var r Response
	if err := json.Unmarshal(raw, &r); err == nil && r.Message != "" {
		return &r
	}

	// Unknown shape: compact the document into the message text.
	var generic any
	if err := json.Unmarshal(raw, &generic); err == nil {
		if compact, err := json.Marshal(generic); err == nil {
			return &Response{Message: string(compact)}
		}
	}
	return &Response{Message: string(raw)}
}

// excerpt trims a body for inclusion in an error message.
func excerpt(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// =============================================================================
// COMPLETION SOURCE
// =============================================================================

// CompletionSource adapts the non-streaming completion endpoint to the
// Source interface: it issues one Complete call and emits the whole reply
// as a single chunk followed by the terminal marker. Configurations with
// only chat.endpoint_url set take this path; the rest of the pipeline
// (reducer, typing renderer) is unchanged.
type CompletionSource struct {
	client    *Client
	message   string
	messageID string

	mu    sync.Mutex
	query string
}

// NewCompletionSource creates a source that resolves message through the
// client's completion endpoint, tagging chunks with messageID.
func NewCompletionSource(client *Client, message, messageID string) *CompletionSource {
	return &CompletionSource{
		client:    client,
		message:   message,
		messageID: messageID,
	}
}

// Stream performs the completion call and emits the reply as one content
// chunk plus a terminal chunk. Cancellation returns nil like the other
// sources.
func (s *CompletionSource) Stream(ctx context.Context, onChunk Handler) error {
	resp, err := s.client.Complete(ctx, s.message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.query = resp.Query
	s.mu.Unlock()

	if resp.Message != "" {
		onChunk(Chunk{ID: s.messageID, Delta: resp.Message})
	}
	onChunk(Chunk{ID: s.messageID, Done: true})
	return nil
}

// Query returns the search hint from the last completed call, if the
// server sent one. Valid once Stream has returned.
func (s *CompletionSource) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}
