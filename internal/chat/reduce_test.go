// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/parley/internal/thinking"
)

func TestReduce_ContentIsConcatenationOfDeltas(t *testing.T) {
	deltas := []string{"The", " quick", " brown", " fox", "", " jumps"}

	s := Reduce(NewState(), StartStream{MessageID: "m1"})
	for _, d := range deltas {
		s = Reduce(s, AppendChunk{MessageID: "m1", Delta: d})
	}

	want := strings.Join(deltas, "")
	if s.Streaming.Content != want {
		t.Errorf("Content = %q, want %q", s.Streaming.Content, want)
	}
	if !s.Streaming.IsStreaming {
		t.Error("stream should still be live before FinishStream")
	}
}

func TestReduce_AppendIgnoredWhenIdle(t *testing.T) {
	s := Reduce(NewState(), AppendChunk{Delta: "orphan"})
	if s.Streaming.Content != "" {
		t.Errorf("idle append should be ignored, got content %q", s.Streaming.Content)
	}
	if s.Streaming.IsStreaming {
		t.Error("append must not start a stream")
	}
}

func TestReduce_TerminalChunkStopsFurtherAppends(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "hello"},
		AppendChunk{MessageID: "m1", Delta: " world", Done: true},
		AppendChunk{MessageID: "m1", Delta: " late"},
	)
	if s.Streaming.Content != "hello world" {
		t.Errorf("Content = %q, want %q", s.Streaming.Content, "hello world")
	}
	if !s.Streaming.Done {
		t.Error("terminal chunk should set Done")
	}
}

func TestReduce_AppendIgnoredAfterFinish(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "hello"},
		FinishStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: " late"},
	)
	if s.Streaming.Content != "hello" {
		t.Errorf("Content = %q, want %q", s.Streaming.Content, "hello")
	}
	if !s.Streaming.Done {
		t.Error("Done should be set")
	}
}

func TestReduce_AppendIgnoredForStaleMessageID(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m2"},
		AppendChunk{MessageID: "m1", Delta: "stale"},
		AppendChunk{MessageID: "m2", Delta: "fresh"},
	)
	if s.Streaming.Content != "fresh" {
		t.Errorf("Content = %q, want %q", s.Streaming.Content, "fresh")
	}
}

func TestReduce_AppendCarriesChunkError(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "part", Error: "upstream hiccup"},
	)
	if s.Streaming.Error != "upstream hiccup" {
		t.Errorf("Error = %q, want chunk error carried through", s.Streaming.Error)
	}
	if s.Streaming.Content != "part" {
		t.Errorf("Content = %q", s.Streaming.Content)
	}
}

func TestReduce_FinishPreservesContentAndID(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "partial answer"},
		FinishStream{MessageID: "m1"},
	)
	if s.Streaming.IsStreaming {
		t.Error("IsStreaming should be false after finish")
	}
	if !s.Streaming.Done {
		t.Error("Done should be true after finish")
	}
	if s.Streaming.Content != "partial answer" {
		t.Errorf("Content = %q", s.Streaming.Content)
	}
	if s.Streaming.MessageID != "m1" {
		t.Errorf("MessageID = %q, want m1", s.Streaming.MessageID)
	}
}

func TestReduce_FailureIsTerminalAndKeepsPartialContent(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "half an ans"},
		StreamFailed{MessageID: "m1", Message: "network timeout"},
	)
	if s.Streaming.IsStreaming {
		t.Error("IsStreaming should be false after failure")
	}
	if s.Streaming.Error != "network timeout" {
		t.Errorf("Error = %q", s.Streaming.Error)
	}
	if !s.Streaming.Done {
		t.Error("failure is a terminal state, Done should be set")
	}
	if s.Streaming.Content != "half an ans" {
		t.Errorf("partial content lost: %q", s.Streaming.Content)
	}
	if !s.Streaming.Failed() {
		t.Error("Failed() should report true")
	}
}

func TestReduce_CancelLeavesNoErrorAndNoDone(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "partial"},
		CancelStream{},
	)
	if s.Streaming.IsStreaming {
		t.Error("IsStreaming should be false after cancel")
	}
	if s.Streaming.Error != "" {
		t.Errorf("cancel must not set Error, got %q", s.Streaming.Error)
	}
	if s.Streaming.Done {
		t.Error("cancel must not set Done")
	}
	if s.Streaming.Content != "partial" {
		t.Errorf("partial content lost: %q", s.Streaming.Content)
	}
}

func TestReduce_LateEventsAfterCancelIgnored(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "before"},
		CancelStream{},
		AppendChunk{MessageID: "m1", Delta: " after"},
		StreamFailed{MessageID: "m1", Message: "context canceled"},
		FinishStream{MessageID: "m1"},
	)
	if s.Streaming.Content != "before" {
		t.Errorf("Content = %q, want %q", s.Streaming.Content, "before")
	}
	if s.Streaming.Error != "" {
		t.Errorf("stale failure resurrected Error: %q", s.Streaming.Error)
	}
	if s.Streaming.Done {
		t.Error("stale finish resurrected Done")
	}
}

func TestReduce_StartReplacesPreviousStream(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "old content"},
		StreamFailed{MessageID: "m1", Message: "boom"},
		StartStream{MessageID: "m2"},
	)
	if !s.Streaming.IsStreaming {
		t.Error("new stream should be live")
	}
	if s.Streaming.MessageID != "m2" {
		t.Errorf("MessageID = %q, want m2", s.Streaming.MessageID)
	}
	if s.Streaming.Content != "" || s.Streaming.Error != "" || s.Streaming.Done {
		t.Errorf("stale fields survived restart: %+v", s.Streaming)
	}
}

func TestReduce_ResetStreamReturnsToIdle(t *testing.T) {
	s := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "x"},
		FinishStream{MessageID: "m1"},
		ResetStream{},
	)
	if !s.Streaming.Idle() {
		t.Errorf("expected idle state, got %+v", s.Streaming)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	base := ReduceAll(NewState(),
		StartStream{MessageID: "m1"},
		AppendChunk{MessageID: "m1", Delta: "original"},
		StartStep{ID: thinking.StepUnderstand},
	)

	_ = ReduceAll(base,
		AppendChunk{MessageID: "m1", Delta: " mutated"},
		CompleteStep{ID: thinking.StepUnderstand},
		FinishStream{MessageID: "m1"},
	)

	if base.Streaming.Content != "original" {
		t.Errorf("input state mutated: Content = %q", base.Streaming.Content)
	}
	if base.Streaming.Done {
		t.Error("input state mutated: Done set")
	}
	step, ok := base.Thinking.Step(thinking.StepUnderstand)
	if !ok || step.Status != thinking.StatusActive {
		t.Errorf("input timeline mutated: %+v", step)
	}
}

func TestReduce_ThinkingEventsRoute(t *testing.T) {
	s := ReduceAll(NewState(),
		ShowThinking{Visible: true},
		StartStep{ID: thinking.StepTool, ToolName: "search"},
	)
	if !s.Thinking.Visible {
		t.Error("timeline should be visible")
	}
	if s.Thinking.ActiveStep != thinking.StepTool {
		t.Errorf("ActiveStep = %q, want %q", s.Thinking.ActiveStep, thinking.StepTool)
	}
	step, _ := s.Thinking.Step(thinking.StepTool)
	if step.ToolName != "search" {
		t.Errorf("ToolName = %q", step.ToolName)
	}

	s = Reduce(s, CompleteStep{ID: thinking.StepTool})
	if s.Thinking.ActiveStep != "" {
		t.Errorf("completing the active step should clear it, got %q", s.Thinking.ActiveStep)
	}

	s = Reduce(s, FailStep{ID: thinking.StepCompose, Note: "model unavailable"})
	step, _ = s.Thinking.Step(thinking.StepCompose)
	if step.Status != thinking.StatusError || step.Note != "model unavailable" {
		t.Errorf("FailStep not applied: %+v", step)
	}

	s = Reduce(s, ResetThinking{})
	for _, st := range s.Thinking.Steps {
		if st.Status != thinking.StatusPending {
			t.Errorf("step %s not pending after reset", st.ID)
		}
	}
	if !s.Thinking.Visible {
		t.Error("reset must not touch visibility")
	}
}

func TestReduce_SetCanCancel(t *testing.T) {
	s := Reduce(NewState(), SetCanCancel{Allowed: true})
	if !s.Thinking.CanCancel {
		t.Error("CanCancel should be true")
	}
	s = Reduce(s, SetCanCancel{Allowed: false})
	if s.Thinking.CanCancel {
		t.Error("CanCancel should be false")
	}
}

func TestReduce_UnknownEventIsNoOp(t *testing.T) {
	type custom struct{ Event }
	s := ReduceAll(NewState(), StartStream{MessageID: "m1"})
	got := Reduce(s, custom{})
	if got.Streaming != s.Streaming {
		t.Error("unknown event should leave state unchanged")
	}
}
