// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/stream"
	"github.com/jeranaias/parley/internal/thinking"
	"github.com/jeranaias/parley/internal/typing"
	"github.com/jeranaias/parley/internal/ui/components"
)

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

const (
	// chunkBuffer sizes the pump channel. Large enough that a fast
	// source never blocks on the render loop.
	chunkBuffer = 64

	// Scripted thinking-step delays. Real progress (the first delta)
	// overrides the script whenever it arrives sooner.
	stepPlanDelay     = 350 * time.Millisecond
	stepRetrieveDelay = 900 * time.Millisecond

	// toolDoneDeltas is how many content chunks the tool step stays
	// active before handing over to composing.
	toolDoneDeltas = 3
)

// startTurn commits the user message and opens a streaming turn for the
// assistant reply.
func (m Model) startTurn(text string) (tea.Model, tea.Cmd) {
	userMsg := model.NewUserMessage(text)
	m.transcript = append(m.transcript, userMsg)
	if m.sessionMgr != nil {
		m.sessionMgr.Track(m.transcript)
	}
	m.failedID = ""
	m.showWelcome = false

	assistant := model.NewAssistantMessage("")
	m.streamingID = assistant.ID

	// New generation: any message still in flight from the previous turn
	// is recognized as stale and dropped.
	m.streamGen++
	gen := m.streamGen
	m.deltaCount = 0
	m.draining = false
	m.completion = nil
	m.pendingTool = ""

	// A fresh typer per turn also picks up speed changes made since the
	// last one.
	m.typer = typing.New(m.cfg.Typing.Speed, typing.WithReducedMotion(m.cfg.Typing.ReducedMotion))

	m.state = core.ReduceAll(m.state,
		core.ResetStream{},
		core.ResetThinking{},
		core.StartStream{MessageID: assistant.ID},
		core.ShowThinking{Visible: m.cfg.Thinking.Visible},
		core.SetCanCancel{Allowed: false},
		core.StartStep{ID: thinking.StepUnderstand},
	)

	src := m.buildSource(text, assistant.ID)

	ch := make(chan stream.Chunk, chunkBuffer)
	m.chunks = ch
	msgID := assistant.ID
	m.controller.Start(src,
		func(c stream.Chunk) { ch <- c },
		func(err error) {
			// A transport failure ends the stream without a terminal
			// chunk; synthesize one so the pump sees it.
			if err != nil {
				ch <- stream.Chunk{ID: msgID, Error: err.Error()}
			}
			close(ch)
		},
	)

	m.updateViewport()

	grace := time.Duration(m.cfg.Chat.CancelGraceSecs) * time.Second
	if grace <= 0 {
		grace = stream.DefaultCancelGrace
	}

	return m, tea.Batch(
		waitForChunk(ch, gen),
		frameTick(gen),
		thinkStepAfter(gen, thinking.StepPlan, stepPlanDelay),
		thinkStepAfter(gen, thinking.StepRetrieve, stepRetrieveDelay),
		armCancel(gen, grace),
	)
}

// buildSource selects the chunk source for a turn from the configuration:
// the streaming endpoint when one is set, the completion endpoint as a
// single-chunk fallback, and canned simulated replies otherwise.
func (m *Model) buildSource(text, messageID string) stream.Source {
	if m.cfg.Chat.Source == "network" {
		client := stream.NewClient(m.cfg.Chat.EndpointURL, m.cfg.Chat.StreamURL, m.log)
		if m.cfg.Chat.RequestTimeoutSecs > 0 {
			client.SetTimeout(time.Duration(m.cfg.Chat.RequestTimeoutSecs) * time.Second)
		}
		if m.cfg.Chat.StreamURL != "" {
			return stream.NewNetworkSource(client, text)
		}
		cs := stream.NewCompletionSource(client, text, messageID)
		m.completion = cs
		return cs
	}

	reply := stream.ReplyFor(text)
	m.pendingTool = reply.ToolName
	delay := time.Duration(m.cfg.Chat.SimulatedWordDelayMs) * time.Millisecond
	return stream.NewSimulatedSource(reply.Text, messageID, delay)
}

// =============================================================================
// CHUNK HANDLING
// =============================================================================

func (m Model) handleStreamChunk(msg streamChunkMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen {
		return m, nil
	}

	if msg.closed {
		// Channel exhausted. A stream still marked live ended at EOF
		// without a terminal chunk, which the protocol allows; treat it
		// as a normal finish.
		if m.state.Streaming.IsStreaming {
			return m.beginFinish()
		}
		return m, nil
	}

	chunk := msg.chunk
	// Network chunk IDs are server-assigned; retag with the local turn
	// ID so the reducer matches them to this stream.
	chunk.ID = m.streamingID

	if chunk.HasError() {
		return m.handleStreamError(chunk.Error)
	}

	if chunk.Delta != "" {
		m.state = core.Reduce(m.state, core.AppendChunk{MessageID: chunk.ID, Delta: chunk.Delta})
		if m.typer != nil {
			m.typer.Append(chunk.Delta)
		}
		m.deltaCount++
		m.advanceThinkingOnDelta()
	}

	if chunk.Done {
		m.state = core.Reduce(m.state, core.AppendChunk{MessageID: chunk.ID, Done: true})
		return m.beginFinish()
	}

	m.updateViewport()
	return m, waitForChunk(m.chunks, msg.gen)
}

// advanceThinkingOnDelta moves the timeline onto real progress. The first
// delta closes out the scripted steps; a few deltas later a tool step, if
// any, hands over to composing.
func (m *Model) advanceThinkingOnDelta() {
	switch {
	case m.deltaCount == 1:
		events := []core.Event{
			core.CompleteStep{ID: thinking.StepUnderstand},
			core.CompleteStep{ID: thinking.StepPlan},
			core.CompleteStep{ID: thinking.StepRetrieve},
		}
		if m.pendingTool != "" {
			events = append(events, core.StartStep{ID: thinking.StepTool, ToolName: m.pendingTool})
		} else {
			events = append(events, core.StartStep{ID: thinking.StepCompose})
		}
		m.state = core.ReduceAll(m.state, events...)

	case m.pendingTool != "" && m.deltaCount == toolDoneDeltas:
		m.state = core.ReduceAll(m.state,
			core.CompleteStep{ID: thinking.StepTool},
			core.StartStep{ID: thinking.StepCompose},
		)
	}
}

// =============================================================================
// FINISH AND DRAIN
// =============================================================================

// beginFinish flips the reducer out of streaming and starts the visual
// drain: the typing renderer may still be behind the full reply, so the
// turn commits once it catches up.
func (m Model) beginFinish() (tea.Model, tea.Cmd) {
	events := []core.Event{
		core.FinishStream{MessageID: m.streamingID},
		core.CompleteStep{ID: thinking.StepUnderstand},
		core.CompleteStep{ID: thinking.StepPlan},
		core.CompleteStep{ID: thinking.StepRetrieve},
		core.CompleteStep{ID: thinking.StepCompose},
		core.CompleteStep{ID: thinking.StepFinalize},
	}
	if m.pendingTool != "" {
		events = append(events, core.CompleteStep{ID: thinking.StepTool})
	}
	m.state = core.ReduceAll(m.state, events...)

	m.draining = true
	if m.typer == nil || !m.typer.Behind() {
		return m.commitTurn()
	}

	// Frame ticks already running carry the drain to completion.
	m.updateViewport()
	return m, nil
}

// commitTurn moves the finished reply from streaming state into the
// transcript.
func (m Model) commitTurn() (tea.Model, tea.Cmd) {
	content := m.state.Streaming.Content
	id := m.streamingID

	m.draining = false
	m.streamingID = ""
	m.typer = nil
	// Chunks still buffered in the pump carry the old generation; bumping
	// here retires them.
	m.streamGen++
	m.state = core.Reduce(m.state, core.ResetStream{})

	if content == "" {
		m.updateViewport()
		m.toasts.Warning("the reply came back empty")
		return m, components.ToastTickCmd()
	}

	reply := model.NewAssistantMessage(content)
	reply.ID = id
	m.transcript = append(m.transcript, reply)
	if m.sessionMgr != nil {
		m.sessionMgr.Track(m.transcript)
	}
	m.updateViewport()

	// A completion endpoint may attach a search hint to the reply.
	if m.completion != nil {
		if q := m.completion.Query(); q != "" {
			gen := m.streamGen
			return m, func() tea.Msg { return relatedQueryMsg{gen: gen, query: q} }
		}
	}
	return m, nil
}

// =============================================================================
// FAILURE
// =============================================================================

func (m Model) handleStreamError(message string) (tea.Model, tea.Cmd) {
	failStep := m.state.Thinking.ActiveStep
	if failStep == "" {
		failStep = thinking.StepCompose
	}

	m.state = core.ReduceAll(m.state,
		core.StreamFailed{MessageID: m.streamingID, Message: message},
		core.FailStep{ID: failStep, Note: message},
	)
	m.log.Warnf("stream failed | gen=%d err=%s", m.streamGen, message)

	m.banner.SetError(message)
	m.draining = false

	// Whatever arrived before the failure is kept, marked as the failed
	// turn in the transcript.
	partial := m.state.Streaming.Content
	id := m.streamingID
	m.streamingID = ""
	m.typer = nil
	m.streamGen++
	m.state = core.Reduce(m.state, core.ResetStream{})

	if partial != "" {
		msg := model.NewAssistantMessage(partial)
		msg.ID = id
		m.transcript = append(m.transcript, msg)
		m.failedID = id
		if m.sessionMgr != nil {
			m.sessionMgr.Track(m.transcript)
		}
	}

	m.updateViewport()
	return m, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// cancelStream aborts the in-flight reply, keeping any partial content.
func (m Model) cancelStream() (tea.Model, tea.Cmd) {
	if !m.state.Thinking.CanCancel {
		m.toasts.Info("cancel unlocks in a moment")
		return m, components.ToastTickCmd()
	}

	m.controller.Cancel()
	m.state = core.Reduce(m.state, core.CancelStream{})

	partial := m.state.Streaming.Content
	id := m.streamingID
	m.draining = false
	m.streamingID = ""
	m.typer = nil
	m.streamGen++
	m.state = core.Reduce(m.state, core.ResetStream{})

	if partial != "" {
		msg := model.NewAssistantMessage(partial)
		msg.ID = id
		m.transcript = append(m.transcript, msg)
		if m.sessionMgr != nil {
			m.sessionMgr.Track(m.transcript)
		}
		m.toasts.Info("reply canceled, partial kept")
	} else {
		m.toasts.Info("reply canceled")
	}

	m.updateViewport()
	return m, components.ToastTickCmd()
}

// =============================================================================
// TIMERS
// =============================================================================

func (m Model) handleFrame(msg frameMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen || !m.streamActive() {
		return m, nil
	}

	m.thinkPanel.Advance()

	if m.draining && (m.typer == nil || !m.typer.Behind()) {
		return m.commitTurn()
	}

	m.updateViewport()
	return m, frameTick(msg.gen)
}

func (m Model) handleThinkStep(msg thinkStepMsg) (tea.Model, tea.Cmd) {
	// The script only runs until real progress takes over.
	if msg.gen != m.streamGen || !m.state.Streaming.IsStreaming || m.deltaCount > 0 {
		return m, nil
	}

	switch msg.step {
	case thinking.StepPlan:
		m.state = core.ReduceAll(m.state,
			core.CompleteStep{ID: thinking.StepUnderstand},
			core.StartStep{ID: thinking.StepPlan},
		)
	case thinking.StepRetrieve:
		m.state = core.ReduceAll(m.state,
			core.CompleteStep{ID: thinking.StepUnderstand},
			core.CompleteStep{ID: thinking.StepPlan},
			core.StartStep{ID: thinking.StepRetrieve},
		)
	}
	return m, nil
}

func (m Model) handleCancelArmed(msg cancelArmedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen || !m.state.Streaming.IsStreaming {
		return m, nil
	}
	m.state = core.Reduce(m.state, core.SetCanCancel{Allowed: true})
	return m, nil
}

func (m Model) handleRelatedQuery(msg relatedQueryMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen {
		return m, nil
	}
	return m.openPicker(msg.query)
}
