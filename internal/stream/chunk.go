// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"time"
)

// =============================================================================
// CHUNK MODEL
// =============================================================================

// Chunk is one incremental unit of streamed assistant text. A sequence of
// chunks sharing an ID reconstructs the full message by concatenating Delta
// values in emission order; the final chunk of a sequence carries Done.
type Chunk struct {
	ID    string `json:"id"`
	Delta string `json:"delta"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// HasError returns true if the chunk carries a stream error.
func (c *Chunk) HasError() bool {
	return c.Error != ""
}

// Terminal returns true if no further chunks follow this one.
func (c *Chunk) Terminal() bool {
	return c.Done || c.Error != ""
}

// Handler is the function type called for each received chunk. Handlers run
// on the goroutine driving the source; they must not block for long.
type Handler func(chunk Chunk)

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator collects streaming chunks and builds the complete response.
type Accumulator struct {
	content      strings.Builder
	ID           string
	ChunkCount   int
	StartTime    time.Time
	FirstDeltaAt time.Time
	Done         bool
	Error        string
}

// NewAccumulator creates an accumulator with the start time recorded.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		StartTime: time.Now(),
	}
}

// Add processes a chunk. Chunks arriving after the terminal chunk are
// ignored so accumulated content can no longer change.
func (a *Accumulator) Add(chunk Chunk) {
	if a.Done {
		return
	}

	if a.ID == "" {
		a.ID = chunk.ID
	}

	if chunk.Delta != "" {
		if a.FirstDeltaAt.IsZero() {
			a.FirstDeltaAt = time.Now()
		}
		a.content.WriteString(chunk.Delta)
	}
	a.ChunkCount++

	if chunk.Error != "" {
		a.Error = chunk.Error
		a.Done = true
		return
	}
	if chunk.Done {
		a.Done = true
	}
}

// Content returns the accumulated text.
func (a *Accumulator) Content() string {
	return a.content.String()
}

// Stats returns timing statistics for the accumulated stream.
func (a *Accumulator) Stats() Stats {
	var firstDelta time.Duration
	if !a.FirstDeltaAt.IsZero() {
		firstDelta = a.FirstDeltaAt.Sub(a.StartTime)
	}
	return Stats{
		FirstDelta: firstDelta,
		Total:      time.Since(a.StartTime),
		ChunkCount: a.ChunkCount,
	}
}

// Callback returns a Handler that accumulates into this accumulator.
func (a *Accumulator) Callback() Handler {
	return func(chunk Chunk) {
		a.Add(chunk)
	}
}

// Stats holds timing statistics collected during streaming.
type Stats struct {
	FirstDelta time.Duration
	Total      time.Duration
	ChunkCount int
}
