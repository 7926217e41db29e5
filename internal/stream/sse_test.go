// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jeranaias/parley/internal/logging"
)

// =============================================================================
// NETWORK SOURCE TESTS
// =============================================================================

func newStreamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer is not a flusher")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
			flusher.Flush()
		}
	}))
}

func streamClient(url string) *Client {
	return NewClient("", url, logging.Nop())
}

func TestNetworkSource_FramedAndBareLines(t *testing.T) {
	server := newStreamServer(t, []string{
		`data: {"id":"m1","delta":"hel"}`,
		`{"id":"m1","delta":"lo "}`,
		``,
		`data: {"id":"m1","delta":"world"}`,
		`data: [DONE]`,
	})
	defer server.Close()

	src := NewNetworkSource(streamClient(server.URL), "hi")
	acc := NewAccumulator()
	if err := src.Stream(context.Background(), acc.Callback()); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if got := acc.Content(); got != "hello world" {
		t.Errorf("Content = %q, want %q", got, "hello world")
	}
}

func TestNetworkSource_MalformedLinesSkipped(t *testing.T) {
	server := newStreamServer(t, []string{
		`data: {"id":"m1","delta":"good"}`,
		`data: {not json at all`,
		`garbage line`,
		`data: {"id":"m1","delta":" still good","done":true}`,
	})
	defer server.Close()

	src := NewNetworkSource(streamClient(server.URL), "hi")
	acc := NewAccumulator()
	if err := src.Stream(context.Background(), acc.Callback()); err != nil {
		t.Fatalf("malformed lines must not abort the stream: %v", err)
	}

	if got := acc.Content(); got != "good still good" {
		t.Errorf("Content = %q, want %q", got, "good still good")
	}
}

func TestNetworkSource_DoneChunkEndsStream(t *testing.T) {
	server := newStreamServer(t, []string{
		`data: {"id":"m1","delta":"a"}`,
		`data: {"id":"m1","delta":"","done":true}`,
		`data: {"id":"m1","delta":"never seen"}`,
	})
	defer server.Close()

	var chunks []Chunk
	src := NewNetworkSource(streamClient(server.URL), "hi")
	if err := src.Stream(context.Background(), func(c Chunk) {
		chunks = append(chunks, c)
	}); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (done chunk ends the sequence)", len(chunks))
	}
	if !chunks[1].Done {
		t.Error("second chunk should carry done")
	}
}

func TestNetworkSource_EOFWithoutSentinel(t *testing.T) {
	// A stream that just ends is a normal completion, not an error.
	server := newStreamServer(t, []string{
		`data: {"id":"m1","delta":"partial"}`,
	})
	defer server.Close()

	src := NewNetworkSource(streamClient(server.URL), "hi")
	acc := NewAccumulator()
	if err := src.Stream(context.Background(), acc.Callback()); err != nil {
		t.Fatalf("EOF should not be an error: %v", err)
	}
	if got := acc.Content(); got != "partial" {
		t.Errorf("Content = %q", got)
	}
}

func TestNetworkSource_AbortIsSilent(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"id\":\"m1\",\"delta\":\"one\"}\n")
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	src := NewNetworkSource(streamClient(server.URL), "hi")

	errCh := make(chan error, 1)
	go func() {
		errCh <- src.Stream(ctx, func(c Chunk) {
			if c.Delta == "one" {
				cancel()
			}
		})
	}()

	select {
	case err := <-errCh:
		// User abort must surface as a silent stop, never an error.
		if err != nil {
			t.Fatalf("abort returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("abort did not stop the stream")
	}
}

func TestNetworkSource_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewNetworkSource(streamClient(server.URL), "hi")
	err := src.Stream(context.Background(), func(Chunk) {})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestFrameData(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantData     string
		wantTerminal bool
	}{
		{"framed json", `data: {"id":"x"}`, `{"id":"x"}`, false},
		{"no space after colon", `data:{"id":"x"}`, `{"id":"x"}`, false},
		{"done sentinel", `data: [DONE]`, "", true},
		{"bare json", `{"id":"x"}`, `{"id":"x"}`, false},
		{"blank", ``, "", false},
		{"whitespace only", `   `, "", false},
		{"crlf stripped", "data: {\"id\":\"x\"}\r", `{"id":"x"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, terminal := frameData([]byte(tt.line))
			if string(data) != tt.wantData {
				t.Errorf("data = %q, want %q", data, tt.wantData)
			}
			if terminal != tt.wantTerminal {
				t.Errorf("terminal = %v, want %v", terminal, tt.wantTerminal)
			}
		})
	}
}
