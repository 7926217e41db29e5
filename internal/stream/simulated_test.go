// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"testing"
	"time"
)

// =============================================================================
// SIMULATED SOURCE TESTS
// =============================================================================

func collectChunks(t *testing.T, src Source) []Chunk {
	t.Helper()
	var chunks []Chunk
	err := src.Stream(context.Background(), func(c Chunk) {
		chunks = append(chunks, c)
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	return chunks
}

func TestSimulatedSource_HelloWorld(t *testing.T) {
	src := NewSimulatedSource("hello world", "msg-1", time.Millisecond)
	chunks := collectChunks(t, src)

	want := []Chunk{
		{ID: "msg-1", Delta: "hello", Done: false},
		{ID: "msg-1", Delta: " world", Done: false},
		{ID: "msg-1", Delta: "", Done: true},
	}

	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, chunks[i], want[i])
		}
	}
}

func TestSimulatedSource_ConcatenationReconstructsInput(t *testing.T) {
	inputs := []string{
		"one",
		"a b c d e",
		"double  space preserved",
		" leading and trailing ",
	}

	for _, input := range inputs {
		src := NewSimulatedSource(input, "m", time.Millisecond)
		acc := NewAccumulator()
		if err := src.Stream(context.Background(), acc.Callback()); err != nil {
			t.Fatalf("Stream(%q) failed: %v", input, err)
		}
		if got := acc.Content(); got != input {
			t.Errorf("reconstruction of %q = %q", input, got)
		}
	}
}

func TestSimulatedSource_EmptyText(t *testing.T) {
	src := NewSimulatedSource("", "m", time.Millisecond)
	chunks := collectChunks(t, src)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !chunks[0].Done || chunks[0].Delta != "" {
		t.Errorf("expected lone done chunk, got %+v", chunks[0])
	}
}

func TestSimulatedSource_CancelStopsEmission(t *testing.T) {
	src := NewSimulatedSource("a b c d e f g h", "m", 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var count int
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, func(c Chunk) {
			count++
			if count == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled stream returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}

	// No terminal chunk and no further words after the cancel point.
	if count > 3 {
		t.Errorf("chunks kept flowing after cancel: %d", count)
	}
}

func TestSimulatedSource_InjectedFailure(t *testing.T) {
	src := NewSimulatedSource("a b c", "m", time.Millisecond)
	src.FailAfter = 2
	src.FailWith = "wire cut"

	chunks := collectChunks(t, src)
	last := chunks[len(chunks)-1]
	if !last.Done || last.Error != "wire cut" {
		t.Errorf("expected terminal error chunk, got %+v", last)
	}
}

func TestSimulatedSource_DefaultDelay(t *testing.T) {
	src := NewSimulatedSource("x", "m", 0)
	if src.Delay != DefaultChunkDelay {
		t.Errorf("Delay = %v, want %v", src.Delay, DefaultChunkDelay)
	}
}
