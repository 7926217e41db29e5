// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the live chat conversation and autosaves it.
//
// The Manager sits between the UI and the session store. The UI hands it
// the current message list after every exchange; the manager tracks dirty
// state and periodically persists through the store, which handles
// titling, deduplication, and eviction. Explicit saves and autosaves go
// through the same path, so a crash loses at most one autosave interval
// of conversation.
package session
