// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
//
// This package handles parsing and executing slash commands in the chat
// interface, providing autocomplete and command registration. The same
// registry backs the TUI and the plain REPL.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Context: Injected application services for handlers
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /save, /load, /sessions: Conversation persistence
//   - /export: Export conversation (text, markdown, json, pdf)
//   - /share: Publish a read-only snapshot
//   - /docs, /doc: Workbench documents
//   - /speed, /thinking, /source: Runtime settings
//
// # Usage
//
// Parse and execute a command:
//
//	result := parser.Parse(input)
//	if result.IsCommand && result.Command != nil {
//	    return result.Command.Handler(ctx, result.Args)
//	}
//
// Get completions:
//
//	completions := completer.Complete("/lo", 3)
//	// Returns /load (and any other matches)
package commands
