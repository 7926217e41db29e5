// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"strings"
	"time"
)

// =============================================================================
// SIMULATED SOURCE
// =============================================================================

// DefaultChunkDelay is the pause between simulated chunks.
const DefaultChunkDelay = 60 * time.Millisecond

// SimulatedSource emits a known string as a word-per-tick chunk sequence,
// standing in for the network stream. The first word carries no separator;
// every later word is prefixed with the single space that preceded it, so
// concatenating all deltas reproduces the input exactly. The sequence ends
// with an empty-delta chunk carrying Done.
type SimulatedSource struct {
	Text      string
	MessageID string
	Delay     time.Duration

	// FailAfter, when > 0, injects a stream error after that many word
	// chunks. Tests use it to exercise the error path.
	FailAfter int
	FailWith  string
}

// NewSimulatedSource creates a simulated source for text with the given
// message ID and per-chunk delay. A non-positive delay falls back to
// DefaultChunkDelay.
func NewSimulatedSource(text, messageID string, delay time.Duration) *SimulatedSource {
	if delay <= 0 {
		delay = DefaultChunkDelay
	}
	return &SimulatedSource{
		Text:      text,
		MessageID: messageID,
		Delay:     delay,
	}
}

// Stream emits the chunk sequence. Cancellation stops the timer and returns
// nil; no chunks are emitted after cancellation.
func (s *SimulatedSource) Stream(ctx context.Context, onChunk Handler) error {
	// Split on single spaces, keeping empty fields, so the concatenation
	// invariant holds for any input including repeated spaces.
	words := strings.Split(s.Text, " ")

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	emitted := 0
	for i, word := range words {
		if s.Text == "" {
			break
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		timer.Reset(s.Delay)

		delta := word
		if i > 0 {
			delta = " " + word
		}
		onChunk(Chunk{ID: s.MessageID, Delta: delta})
		emitted++

		if s.FailAfter > 0 && emitted >= s.FailAfter {
			msg := s.FailWith
			if msg == "" {
				msg = "simulated stream failure"
			}
			onChunk(Chunk{ID: s.MessageID, Delta: "", Done: true, Error: msg})
			return nil
		}
	}

	select {
	case <-ctx.Done():
		return nil
	default:
	}

	onChunk(Chunk{ID: s.MessageID, Delta: "", Done: true})
	return nil
}
