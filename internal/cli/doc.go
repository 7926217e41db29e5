// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the parley command line: argument parsing, the
// command handlers that run outside the TUI, and the plain readline chat
// REPL used as the no-TTY / accessibility fallback.
//
// The package deliberately avoids a CLI framework. Commands are a small
// enum, flags are parsed by hand, and every handler returns an error that
// main translates into an exit code. Interactive output is styled through
// lipgloss with colors disabled automatically for pipes and NO_COLOR.
package cli
