// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// STREAMING: Robust newline-delimited parsing with error handling

// =============================================================================
// PROTOCOL CONSTANTS
// =============================================================================

const (
	// MaxLineSize is the maximum allowed size for a single stream line (64KB).
	MaxLineSize = 64 * 1024

	// dataPrefix marks an SSE-style framed line.
	dataPrefix = "data: "

	// doneSentinel terminates a framed stream.
	doneSentinel = "[DONE]"
)

// StreamError is a failure during streaming that preserves any partial
// content received before the error.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// NETWORK SOURCE
// =============================================================================

// NetworkSource streams one assistant response over the newline-delimited
// chunk protocol. Each frame is either "data: <json>", "data: [DONE]", or a
// bare "<json>" line matching the Chunk shape. Malformed lines are logged
// and skipped; they never abort the stream.
type NetworkSource struct {
	client  *Client
	message string
}

// NewNetworkSource creates a source that will stream the reply to message
// through the client's streaming endpoint.
func NewNetworkSource(client *Client, message string) *NetworkSource {
	return &NetworkSource{
		client:  client,
		message: message,
	}
}

// Stream issues the request and parses frames until the stream ends.
// A context cancellation (user abort) returns nil.
func (s *NetworkSource) Stream(ctx context.Context, onChunk Handler) error {
	return s.client.StreamMessage(ctx, s.message, onChunk)
}

// StreamMessage posts message to the streaming endpoint and feeds parsed
// chunks to onChunk. See NetworkSource for the frame grammar.
func (c *Client) StreamMessage(ctx context.Context, message string, onChunk Handler) error {
	if c.streamURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(completionRequest{Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		// User abort is a silent stop, not a failure.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, excerpt(raw, 200))
	}

	return c.processStream(ctx, resp.Body, onChunk)
}

// processStream reads newline-delimited frames and dispatches chunks.
func (c *Client) processStream(ctx context.Context, body io.Reader, onChunk Handler) error {
	reader := bufio.NewReaderSize(body, 4096)
	var partial bytes.Buffer

	for {
		select {
		case <-ctx.Done():
			// Silent stop on user abort.
			return nil
		default:
		}

		line, err := readLine(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return &StreamError{Partial: partial.String(), Err: err}
		}

		data, terminal := frameData(line)
		if terminal {
			return nil
		}
		if len(data) == 0 {
			continue
		}

		var chunk Chunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed lines; a single bad frame must not kill the stream.
			c.log.Warnf("skipping malformed stream line: %v", err)
			continue
		}

		partial.WriteString(chunk.Delta)
		onChunk(chunk)

		if chunk.Terminal() {
			return nil
		}
	}
}

// readLine reads one protocol line, enforcing MaxLineSize.
func readLine(reader *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		part, isPrefix, err := reader.ReadLine()
		if err != nil {
			return nil, err
		}
		buf.Write(part)
		if buf.Len() > MaxLineSize {
			return nil, fmt.Errorf("stream line too large: %d bytes", buf.Len())
		}
		if !isPrefix {
			return buf.Bytes(), nil
		}
	}
}

// frameData extracts the JSON payload from a protocol line. It returns the
// payload and whether the line was the [DONE] sentinel. Blank lines yield an
// empty payload.
func frameData(line []byte) (data []byte, terminal bool) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, false
	}

	if bytes.HasPrefix(line, []byte(dataPrefix)) {
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if bytes.Equal(payload, []byte(doneSentinel)) {
			return nil, true
		}
		return payload, false
	}
	// Tolerate "data:" with no space after the colon.
	if bytes.HasPrefix(line, []byte("data:")) {
		payload := bytes.TrimSpace(line[len("data:"):])
		if bytes.Equal(payload, []byte(doneSentinel)) {
			return nil, true
		}
		return payload, false
	}

	// Bare JSON line.
	return bytes.TrimSpace(line), false
}
