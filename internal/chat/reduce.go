// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Reduce applies an event to a state and returns the next state. The input
// state is never mutated; events that do not apply in the current state
// return the input unchanged.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {

	case StartStream:
		next := s.Clone()
		next.Streaming = StreamingState{
			IsStreaming: true,
			MessageID:   ev.MessageID,
		}
		return next

	case AppendChunk:
		// STREAMING: late deliveries are dropped, not errors. A chunk can
		// legally arrive after cancel, after a terminal chunk, or tagged
		// with a stale message ID when streams are restarted quickly.
		if !s.Streaming.IsStreaming || s.Streaming.Done {
			return s
		}
		if ev.MessageID != "" && s.Streaming.MessageID != "" && ev.MessageID != s.Streaming.MessageID {
			return s
		}
		next := s.Clone()
		next.Streaming.Content += ev.Delta
		if ev.Done {
			next.Streaming.Done = true
		}
		if ev.Error != "" {
			next.Streaming.Error = ev.Error
		}
		return next

	case FinishStream:
		if !s.Streaming.IsStreaming {
			return s
		}
		if ev.MessageID != "" && s.Streaming.MessageID != "" && ev.MessageID != s.Streaming.MessageID {
			return s
		}
		next := s.Clone()
		next.Streaming.IsStreaming = false
		next.Streaming.Done = true
		return next

	case StreamFailed:
		if !s.Streaming.IsStreaming {
			return s
		}
		if ev.MessageID != "" && s.Streaming.MessageID != "" && ev.MessageID != s.Streaming.MessageID {
			return s
		}
		next := s.Clone()
		next.Streaming.IsStreaming = false
		next.Streaming.Done = true
		next.Streaming.Error = ev.Message
		return next

	case CancelStream:
		if !s.Streaming.IsStreaming {
			return s
		}
		// Cancellation is not a failure: Error stays empty, Done stays
		// false, and the partial content survives for display.
		next := s.Clone()
		next.Streaming.IsStreaming = false
		return next

	case ResetStream:
		next := s.Clone()
		next.Streaming = StreamingState{}
		return next

	case StartStep:
		next := s.Clone()
		next.Thinking.StartStep(ev.ID, ev.Label, ev.ToolName)
		return next

	case CompleteStep:
		next := s.Clone()
		next.Thinking.CompleteStep(ev.ID)
		return next

	case FailStep:
		next := s.Clone()
		next.Thinking.FailStep(ev.ID, ev.Note)
		return next

	case ResetThinking:
		next := s.Clone()
		next.Thinking.Reset()
		return next

	case ShowThinking:
		next := s.Clone()
		next.Thinking.SetVisible(ev.Visible)
		return next

	case SetCanCancel:
		next := s.Clone()
		next.Thinking.SetCanCancel(ev.Allowed)
		return next
	}

	return s
}

// ReduceAll folds a sequence of events over a state, left to right.
func ReduceAll(s State, events ...Event) State {
	for _, e := range events {
		s = Reduce(s, e)
	}
	return s
}
