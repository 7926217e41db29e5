// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import "testing"

// =============================================================================
// ACCUMULATOR TESTS
// =============================================================================

func TestAccumulator_ConcatenatesDeltas(t *testing.T) {
	chunks := []Chunk{
		{ID: "m1", Delta: "The"},
		{ID: "m1", Delta: " quick"},
		{ID: "m1", Delta: " brown fox"},
		{ID: "m1", Delta: "", Done: true},
	}

	acc := NewAccumulator()
	for _, c := range chunks {
		acc.Add(c)
	}

	if got := acc.Content(); got != "The quick brown fox" {
		t.Errorf("Content = %q, want %q", got, "The quick brown fox")
	}
	if !acc.Done {
		t.Error("accumulator not done after terminal chunk")
	}
	if acc.ID != "m1" {
		t.Errorf("ID = %q, want m1", acc.ID)
	}
}

func TestAccumulator_IgnoresChunksAfterDone(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Chunk{ID: "m1", Delta: "hello", Done: true})
	acc.Add(Chunk{ID: "m1", Delta: " late"})

	if got := acc.Content(); got != "hello" {
		t.Errorf("content changed after done: %q", got)
	}
}

func TestAccumulator_ErrorIsTerminal(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Chunk{ID: "m1", Delta: "par"})
	acc.Add(Chunk{ID: "m1", Error: "connection reset"})
	acc.Add(Chunk{ID: "m1", Delta: "tial"})

	if !acc.Done {
		t.Error("error chunk must terminate accumulation")
	}
	if acc.Error != "connection reset" {
		t.Errorf("Error = %q", acc.Error)
	}
	if got := acc.Content(); got != "par" {
		t.Errorf("Content = %q, want %q", got, "par")
	}
}

func TestChunk_Terminal(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		want  bool
	}{
		{"plain delta", Chunk{Delta: "hi"}, false},
		{"done", Chunk{Done: true}, true},
		{"error", Chunk{Error: "boom"}, true},
		{"done with error", Chunk{Done: true, Error: "boom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chunk.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
