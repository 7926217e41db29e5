// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/parley/internal/logging"
)

// =============================================================================
// COMPLETION CLIENT TESTS
// =============================================================================

func TestClient_CompleteMessageAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"here you go","query":"golang generics"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logging.Nop())
	resp, err := client.Complete(context.Background(), "find docs")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Message != "here you go" {
		t.Errorf("Message = %q", resp.Message)
	}
	if resp.Query != "golang generics" {
		t.Errorf("Query = %q", resp.Query)
	}
}

func TestClient_CompleteMessageOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"plain reply"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logging.Nop())
	resp, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Message != "plain reply" || resp.Query != "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_CompleteArbitraryJSONFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":42,"notes":["a","b"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logging.Nop())
	resp, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	// Unknown shapes are stringified so the UI still has text to show.
	if !strings.Contains(resp.Message, `"answer":42`) {
		t.Errorf("fallback message = %q", resp.Message)
	}
}

func TestClient_CompleteTimeout(t *testing.T) {
	// The handler parks until the client gives up; Close waits out any
	// handler that actually got dispatched.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logging.Nop())
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_CompleteRequiresEndpoint(t *testing.T) {
	client := NewClient("", "", logging.Nop())
	if _, err := client.Complete(context.Background(), "hi"); err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestParseCompletion(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantQuery   string
	}{
		{"full shape", `{"message":"m","query":"q"}`, "m", "q"},
		{"message only", `{"message":"m"}`, "m", ""},
		{"non-json", `plain text`, "plain text", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCompletion([]byte(tt.body))
			if got.Message != tt.wantMessage || got.Query != tt.wantQuery {
				t.Errorf("parseCompletion(%q) = %+v", tt.body, got)
			}
		})
	}
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

func TestController_StartCancelsPrevious(t *testing.T) {
	first := NewSimulatedSource("a b c d e f g h i j", "m1", 15*time.Millisecond)
	second := NewSimulatedSource("x", "m2", time.Millisecond)

	ctrl := NewController()

	firstDone := make(chan error, 1)
	var mu sync.Mutex
	var firstChunks int
	ctrl.Start(first, func(Chunk) {
		mu.Lock()
		firstChunks++
		mu.Unlock()
	}, func(err error) { firstDone <- err })

	// Give the first stream a moment to emit, then replace it.
	time.Sleep(40 * time.Millisecond)

	secondDone := make(chan error, 1)
	acc := NewAccumulator()
	ctrl.Start(second, acc.Callback(), func(err error) { secondDone <- err })

	select {
	case err := <-firstDone:
		if err != nil {
			t.Errorf("replaced stream returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first stream never finished after replacement")
	}

	select {
	case err := <-secondDone:
		if err != nil {
			t.Errorf("second stream failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second stream never finished")
	}

	if got := acc.Content(); got != "x" {
		t.Errorf("second stream content = %q", got)
	}
}

func TestController_CancelWhenIdle(t *testing.T) {
	ctrl := NewController()
	ctrl.Cancel() // must not panic
	if ctrl.Active() {
		t.Error("idle controller reports active")
	}
}

func TestController_ActiveLifecycle(t *testing.T) {
	ctrl := NewController()
	done := make(chan error, 1)
	ctrl.Start(NewSimulatedSource("a b", "m", 5*time.Millisecond), func(Chunk) {}, func(err error) {
		done <- err
	})

	if !ctrl.Active() {
		t.Error("controller should be active while streaming")
	}
	<-done
	// Allow the cleanup in Start's goroutine to run.
	time.Sleep(10 * time.Millisecond)
	if ctrl.Active() {
		t.Error("controller still active after stream completed")
	}
}
