// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view for the parley TUI.

The package implements the full-screen conversation interface on Bubble
Tea. It owns no conversation logic of its own: every state change that
matters (streaming lifecycle, thinking steps, cancellation) flows through
the reducer in internal/chat, and the view re-renders from the state the
reducer returns.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model for the whole screen:
  - committed transcript plus the in-flight streaming turn
  - reducer state (streaming + thinking timeline)
  - textarea input with slash-command completion
  - session tracking, autosave ticks and the config hot-reload listener

## Streaming (stream.go)

One stream at a time. Chunks arrive on a buffered channel filled by the
controller's handler goroutine; a self-re-arming command delivers them to
Update tagged with a generation number, so chunks from an abandoned
stream are recognized and dropped. The typing renderer paces how much of
the accumulated reply is visible per frame.

## Commands (commands.go)

Glue between the command registry's messages and the model: saving and
loading sessions, exports, sharing, clipboard, settings changes. Handlers
in internal/commands do the storage work; this file applies the results
to the screen.

## View (view.go)

Renders header, transcript viewport, thinking panel, error banner,
completion popup, input area and status bar, then overlays toasts without
disturbing the layout underneath.
*/
package chat
