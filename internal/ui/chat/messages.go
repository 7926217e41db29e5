// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/stream"
	"github.com/jeranaias/parley/internal/thinking"
)

// Message types for the chat view, in three groups: the streaming
// lifecycle (generation-tagged so a restarted stream can never be fed by
// its predecessor's messages), timers that script the thinking timeline,
// and configuration hot-reload delivery.

// =============================================================================
// STREAM MESSAGES
// =============================================================================

// streamChunkMsg delivers one chunk from the pump channel. closed marks
// channel exhaustion: the stream goroutine has finished and no further
// chunks exist for this generation.
type streamChunkMsg struct {
	gen    int
	chunk  stream.Chunk
	closed bool
}

// frameMsg drives repaints while a reply is streaming or draining: the
// typing renderer advances on its own clock, so the view polls it once
// per frame rather than once per chunk.
type frameMsg struct {
	gen int
}

// cancelArmedMsg fires once the cancel grace period has elapsed.
type cancelArmedMsg struct {
	gen int
}

// relatedQueryMsg carries the search hint a completion endpoint may
// attach to its reply.
type relatedQueryMsg struct {
	gen   int
	query string
}

// =============================================================================
// THINKING SCRIPT MESSAGES
// =============================================================================

// thinkStepMsg advances the scripted portion of the thinking timeline.
// The early steps run on timers; the later ones are driven by actual
// stream progress.
type thinkStepMsg struct {
	gen  int
	step thinking.StepID
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// configReloadedMsg delivers a config snapshot picked up by the file
// watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// streamFrameInterval is the repaint cadence during streaming. Matches
// the thinking panel's spinner so one timer serves both.
const streamFrameInterval = 80 * time.Millisecond

// waitForChunk receives the next chunk for the given generation, or
// reports channel closure. Re-armed by the handler after every delivery.
func waitForChunk(ch <-chan stream.Chunk, gen int) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return streamChunkMsg{gen: gen, closed: true}
		}
		return streamChunkMsg{gen: gen, chunk: chunk}
	}
}

// frameTick schedules the next repaint frame.
func frameTick(gen int) tea.Cmd {
	return tea.Tick(streamFrameInterval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// thinkStepAfter schedules a scripted thinking-step advance.
func thinkStepAfter(gen int, step thinking.StepID, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return thinkStepMsg{gen: gen, step: step}
	})
}

// armCancel schedules the end of the cancel grace period.
func armCancel(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return cancelArmedMsg{gen: gen}
	})
}

// listenReloads blocks on the watcher's reload channel and delivers the
// next config snapshot. Re-armed after every delivery.
func listenReloads(ch <-chan *config.Config) tea.Cmd {
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadedMsg{cfg: cfg}
	}
}
