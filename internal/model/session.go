// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// TitleMaxRunes caps a derived session title before the ellipsis.
	TitleMaxRunes = 50

	// PreviewMaxRunes caps the lastMessage preview before the ellipsis.
	PreviewMaxRunes = 100

	// DefaultTitle is used when a session has no user message to draw from.
	DefaultTitle = "New Chat"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is a persisted chat: denormalized list metadata plus the full
// message history. The JSON field names match the stored history shape.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"messageCount"`
	Messages     []Message `json:"messages"`
}

// NewSession builds a session from a message history, deriving the title,
// preview, and count. The timestamp is set to now.
func NewSession(messages []Message) Session {
	s := Session{
		ID:        generateSessionID(),
		Timestamp: time.Now(),
	}
	s.SetMessages(messages)
	return s
}

// SetMessages replaces the history and rederives the denormalized fields.
// The session ID and timestamp are left alone so callers control identity
// and recency separately.
func (s *Session) SetMessages(messages []Message) {
	s.Messages = cloneMessages(messages)
	s.Title = GenerateTitle(messages)
	s.LastMessage = LastMessagePreview(messages)
	s.MessageCount = len(messages)
}

// Touch bumps the session timestamp to now.
func (s *Session) Touch() {
	s.Timestamp = time.Now()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() Session {
	out := *s
	out.Messages = cloneMessages(s.Messages)
	return out
}

// ContentHash returns the hash of the session's message content. Sessions
// with identical histories collide regardless of IDs or timestamps.
func (s *Session) ContentHash() string {
	return ContentHash(s.Messages)
}

func cloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// =============================================================================
// DERIVATION RULES
// =============================================================================

// GenerateTitle derives a session title from the first user message,
// truncated to TitleMaxRunes with a trailing ellipsis when cut. A history
// with no user message yields DefaultTitle.
func GenerateTitle(messages []Message) string {
	for i := range messages {
		if messages[i].Role == RoleUser {
			return util.TruncateWithEllipsis(messages[i].Content, TitleMaxRunes)
		}
	}
	return DefaultTitle
}

// LastMessagePreview derives the list preview from the final message,
// truncated to PreviewMaxRunes. Empty history yields an empty string.
func LastMessagePreview(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	return util.TruncateWithEllipsis(last.Content, PreviewMaxRunes)
}

// ContentHash hashes the ordered (role, content) pairs of a history.
// IDs and timestamps are deliberately excluded: the hash identifies what
// was said, not when, so a resaved copy of the same chat deduplicates.
// Fields are length-prefixed so adjacent values cannot smear together.
func ContentHash(messages []Message) string {
	h := sha256.New()
	for i := range messages {
		role := string(messages[i].Role)
		fmt.Fprintf(h, "%d:%s", len(role), role)
		fmt.Fprintf(h, "%d:%s", len(messages[i].Content), messages[i].Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// generateSessionID returns a new opaque session identifier.
func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// RELIABILITY: fall back to a time-derived ID rather than failing.
		return fmt.Sprintf("chat_%d", time.Now().UnixNano())
	}
	return "chat_" + hex.EncodeToString(b)
}
