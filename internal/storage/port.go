// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat data behind a small key-value port.
//
// All higher layers read and write string values under well-known keys
// through the Store interface, so the backing medium (files, SQLite, or
// memory in tests) can change without touching call sites.
package storage

import "errors"

// =============================================================================
// WELL-KNOWN KEYS
// =============================================================================

// Storage keys. Each collection lives under a single key as one JSON
// document, mirroring the original single-blob-per-collection layout so
// exported data stays portable.
const (
	// KeySessions holds the JSON array of saved chat sessions.
	KeySessions = "chat_sessions"

	// KeyShares holds the JSON map of share-id to published snapshot.
	KeyShares = "shared_chats"

	// KeyDocuments holds the JSON map of workbench documents.
	KeyDocuments = "workbench_documents"
)

// =============================================================================
// STORE PORT
// =============================================================================

// ErrKeyNotFound is returned by Get when no value exists under a key.
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is the persistence port: a string-valued key-value contract.
//
// Set overwrites atomically with respect to Get, so a reader never sees a
// torn value. Remove is idempotent and succeeds when the key is absent.
type Store interface {
	// Get returns the value under key, or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes the value under key. Removing an absent key is not
	// an error.
	Remove(key string) error

	// Close releases any resources held by the backend.
	Close() error
}
