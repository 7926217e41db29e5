// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/parley/internal/thinking"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is a state transition request handled by Reduce. Events are plain
// values so they can cross goroutine and channel boundaries safely.
type Event interface {
	isEvent()
}

// ----- Streaming events -----

// StartStream begins a new in-flight response, discarding any previous
// streaming state. Content starts empty, Error and Done clear.
type StartStream struct {
	MessageID string
}

// AppendChunk applies one stream chunk to the in-flight response: Delta is
// appended to the content, Done marks the stream terminal, and a non-empty
// Error is carried onto the state. The event is ignored when no stream is
// live, after a terminal chunk, or when MessageID names a different
// response than the live one.
type AppendChunk struct {
	MessageID string
	Delta     string
	Done      bool
	Error     string
}

// FinishStream marks the live response complete: Done becomes true and
// IsStreaming false. Content and MessageID are preserved.
type FinishStream struct {
	MessageID string
}

// StreamFailed records a stream error: Error is set, Done becomes true,
// and IsStreaming clears. Partial content is preserved so the UI can show
// what arrived before the failure.
type StreamFailed struct {
	MessageID string
	Message   string
}

// CancelStream stops the live response without recording an error or a
// terminal Done. Partial content is preserved and Error stays empty.
type CancelStream struct{}

// ResetStream returns the streaming state to idle, dropping content.
type ResetStream struct{}

// ----- Thinking events -----

// StartStep activates a timeline step. Label overrides the default label
// when non-empty; ToolName annotates tool steps.
type StartStep struct {
	ID       thinking.StepID
	Label    string
	ToolName string
}

// CompleteStep marks a step done.
type CompleteStep struct {
	ID thinking.StepID
}

// FailStep marks a step failed with an explanatory note.
type FailStep struct {
	ID   thinking.StepID
	Note string
}

// ResetThinking restores the default pending steps.
type ResetThinking struct{}

// ShowThinking toggles timeline visibility.
type ShowThinking struct {
	Visible bool
}

// SetCanCancel toggles whether the UI offers stream cancellation.
type SetCanCancel struct {
	Allowed bool
}

func (StartStream) isEvent()   {}
func (AppendChunk) isEvent()   {}
func (FinishStream) isEvent()  {}
func (StreamFailed) isEvent()  {}
func (CancelStream) isEvent()  {}
func (ResetStream) isEvent()   {}
func (StartStep) isEvent()     {}
func (CompleteStep) isEvent()  {}
func (FailStep) isEvent()      {}
func (ResetThinking) isEvent() {}
func (ShowThinking) isEvent()  {}
func (SetCanCancel) isEvent()  {}
