// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the pure state core of a conversation turn: the
// streaming response being assembled, the thinking timeline shown while
// the assistant works, and the reducer that advances both.
//
// State is advanced exclusively through Reduce, which never mutates its
// input. UI layers dispatch events and re-render from the returned state,
// so a stale goroutine holding an old State cannot corrupt the current one.
package chat

import (
	"github.com/jeranaias/parley/internal/thinking"
)

// =============================================================================
// STREAMING STATE
// =============================================================================

// StreamingState tracks the single in-flight assistant response. At most
// one stream is live per State; starting a new one replaces this struct
// wholesale.
type StreamingState struct {
	// IsStreaming is true from StartStream until the stream finishes,
	// fails, or is canceled.
	IsStreaming bool

	// MessageID identifies the in-flight response. Chunks carrying a
	// different ID are ignored, which shields the state from deliveries
	// that race a cancellation.
	MessageID string

	// Content accumulates the streamed text. It equals the concatenation
	// of every accepted chunk delta, in arrival order.
	Content string

	// Error holds the failure message when the stream ended in error.
	// Empty means no error. A canceled stream leaves this empty.
	Error string

	// Done is true once the stream reached a terminal state, either
	// completion or failure. Further appends are ignored until the next
	// StartStream or ResetStream. Cancellation does not set Done.
	Done bool
}

// Idle reports whether no stream is live and nothing terminal is pending.
func (s StreamingState) Idle() bool {
	return !s.IsStreaming && !s.Done && s.Error == "" && s.Content == ""
}

// Failed reports whether the stream ended in error.
func (s StreamingState) Failed() bool {
	return s.Error != ""
}

// =============================================================================
// STATE
// =============================================================================

// State is the complete reducible conversation-turn state.
type State struct {
	Streaming StreamingState
	Thinking  thinking.Timeline
}

// NewState returns the initial state: idle streaming, fresh hidden timeline.
func NewState() State {
	return State{
		Thinking: thinking.NewTimeline(),
	}
}

// Clone returns a deep copy. Reduce clones before mutating so callers can
// keep references to prior states.
func (s State) Clone() State {
	out := s
	out.Thinking = s.Thinking.Clone()
	return out
}
