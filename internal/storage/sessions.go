// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &StoreError{Message: "session not found"}

// ErrEmptySession is returned when saving an empty message list.
var ErrEmptySession = &StoreError{Message: "cannot save an empty session"}

// StoreError represents a session-store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists the chat session list under KeySessions.
//
// Saving deduplicates by content hash: a history identical to an already
// stored one (same ordered role and content pairs) updates that session in
// place instead of creating a duplicate.
type SessionStore struct {
	store Store
	log   logging.Logger

	// MaxSessions limits stored sessions (0 = unlimited). When the limit
	// is exceeded the oldest sessions are evicted.
	MaxSessions int
}

// NewSessionStore creates a session store over the given backend.
func NewSessionStore(store Store, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionStore{
		store:       store,
		log:         log.With("sessions"),
		MaxSessions: 50,
	}
}

// Load returns all stored sessions. Parse failures are logged and degrade
// to an empty list; a single corrupt entry never poisons the rest.
func (s *SessionStore) Load() []model.Session {
	raw, err := s.store.Get(KeySessions)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Warnf("failed to read sessions: %v", err)
		}
		return nil
	}
	return s.parseSessions([]byte(raw))
}

// parseSessions decodes the stored array element by element so legacy or
// corrupt entries are skipped instead of failing the whole load.
func (s *SessionStore) parseSessions(data []byte) []model.Session {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		s.log.Warnf("stored sessions are not a JSON array, starting empty: %v", err)
		return nil
	}

	sessions := make([]model.Session, 0, len(elems))
	for i, elem := range elems {
		var sess model.Session
		if err := json.Unmarshal(elem, &sess); err != nil {
			s.log.Warnf("skipping unreadable session at index %d: %v", i, err)
			continue
		}
		if sess.ID == "" {
			s.log.Warnf("skipping session at index %d: missing id", i)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions
}

// Save persists a message history as a session and returns it. A history
// whose content hash matches an existing session updates that session in
// place; the stored count does not grow.
func (s *SessionStore) Save(messages []model.Message) (model.Session, error) {
	if len(messages) == 0 {
		return model.Session{}, ErrEmptySession
	}

	sessions := s.Load()
	hash := model.ContentHash(messages)

	for i := range sessions {
		if sessions[i].ContentHash() == hash {
			sessions[i].SetMessages(messages)
			sessions[i].Touch()
			if err := s.persist(sessions); err != nil {
				return model.Session{}, err
			}
			return sessions[i], nil
		}
	}

	sess := model.NewSession(messages)
	sessions = append(sessions, sess)
	sessions = s.enforceLimit(sessions)

	if err := s.persist(sessions); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// enforceLimit evicts the oldest sessions when over MaxSessions.
func (s *SessionStore) enforceLimit(sessions []model.Session) []model.Session {
	if s.MaxSessions <= 0 || len(sessions) <= s.MaxSessions {
		return sessions
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.Before(sessions[j].Timestamp)
	})
	excess := len(sessions) - s.MaxSessions
	s.log.Infof("session limit reached, evicting %d oldest", excess)
	return sessions[excess:]
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id string) (model.Session, error) {
	for _, sess := range s.Load() {
		if sess.ID == id {
			return sess, nil
		}
	}
	return model.Session{}, ErrSessionNotFound
}

// Rename changes the title of the session with the given ID.
func (s *SessionStore) Rename(id, title string) error {
	sessions := s.Load()
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Title = title
			return s.persist(sessions)
		}
	}
	return ErrSessionNotFound
}

// Delete removes the session with the given ID.
func (s *SessionStore) Delete(id string) error {
	sessions := s.Load()
	kept := sessions[:0]
	found := false
	for _, sess := range sessions {
		if sess.ID == id {
			found = true
			continue
		}
		kept = append(kept, sess)
	}
	if !found {
		return ErrSessionNotFound
	}
	return s.persist(kept)
}

// List returns all sessions, most recently updated first.
func (s *SessionStore) List() []model.Session {
	sessions := s.Load()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions
}

// Clear removes all stored sessions.
func (s *SessionStore) Clear() error {
	return s.store.Remove(KeySessions)
}

// persist writes the session list back to the store.
func (s *SessionStore) persist(sessions []model.Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	if err := s.store.Set(KeySessions, string(data)); err != nil {
		s.log.Errorf("failed to persist sessions: %v", err)
		return err
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns sessions whose title or message content contains the
// query, most recent first. Matching is case-insensitive and ignores
// diacritics, so "cafe" finds "café".
func (s *SessionStore) Search(query string) []model.Session {
	query = normalizeForSearch(query)
	if query == "" {
		return s.List()
	}

	var results []model.Session
	for _, sess := range s.List() {
		if s.sessionMatches(sess, query) {
			results = append(results, sess)
		}
	}
	return results
}

// sessionMatches checks the title first, then falls through to content.
func (s *SessionStore) sessionMatches(sess model.Session, normQuery string) bool {
	if strings.Contains(normalizeForSearch(sess.Title), normQuery) {
		return true
	}
	for _, msg := range sess.Messages {
		if strings.Contains(normalizeForSearch(msg.Content), normQuery) {
			return true
		}
	}
	return false
}

// searchNormalizer strips diacritics: decompose, drop combining marks,
// recompose.
var searchNormalizer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeForSearch lowercases and removes diacritics for matching.
func normalizeForSearch(s string) string {
	out, _, err := transform.String(searchNormalizer, s)
	if err != nil {
		// UNICODE: fall back to plain lowercasing on transform failure.
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}
