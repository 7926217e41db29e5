// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the live conversation and autosaves it through the store.
type Manager struct {
	mu sync.Mutex

	store *storage.SessionStore
	log   logging.Logger

	// Session tracking
	startTime    time.Time
	lastActivity time.Time

	// The conversation as last handed over by the UI, and the store ID it
	// was saved under (empty until the first save).
	messages []model.Message
	savedID  string

	// Auto-save configuration
	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool
}

// Config holds configuration for the session manager.
type Config struct {
	// AutoSaveEnabled enables automatic saving
	AutoSaveEnabled bool

	// AutoSaveInterval is how often to auto-save (default: 30 seconds)
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30 * time.Second,
	}
}

// NewManager creates a new session manager over the given store.
func NewManager(store *storage.SessionStore, cfg Config, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = DefaultConfig().AutoSaveInterval
	}

	now := time.Now()
	return &Manager{
		store:            store,
		log:              log.With("session"),
		startTime:        now,
		lastActivity:     now,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}
}

// =============================================================================
// CONVERSATION TRACKING
// =============================================================================

// Track replaces the tracked conversation with the given messages and marks
// the session dirty. An empty conversation clears tracking without marking
// dirty, since there is nothing worth saving.
func (m *Manager) Track(messages []model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastActivity = time.Now()

	if len(messages) == 0 {
		m.messages = nil
		m.isDirty = false
		return
	}

	m.messages = make([]model.Message, len(messages))
	copy(m.messages, messages)
	m.isDirty = true
}

// Reset discards the tracked conversation and starts a fresh session.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.messages = nil
	m.savedID = ""
	m.isDirty = false
	m.startTime = now
	m.lastActivity = now
	m.lastAutoSave = now
}

// Resume loads an existing stored session into the manager so further
// exchanges continue it.
func (m *Manager) Resume(sess model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.messages = make([]model.Message, len(sess.Messages))
	copy(m.messages, sess.Messages)
	m.savedID = sess.ID
	m.isDirty = false
	m.startTime = now
	m.lastActivity = now
	m.lastAutoSave = now
}

// RecordActivity updates the last activity timestamp.
// This should be called on user input or other activity.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
}

// MarkClean indicates the session has been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether the session has unsaved changes.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// SAVING
// =============================================================================

// Save persists the tracked conversation through the store and marks the
// session clean. The store deduplicates identical content, so saving an
// unchanged conversation updates the existing record instead of forking it.
func (m *Manager) Save() (model.Session, error) {
	m.mu.Lock()
	messages := make([]model.Message, len(m.messages))
	copy(messages, m.messages)
	m.mu.Unlock()

	sess, err := m.store.Save(messages)
	if err != nil {
		return model.Session{}, err
	}

	m.mu.Lock()
	m.savedID = sess.ID
	m.isDirty = false
	m.lastAutoSave = time.Now()
	m.mu.Unlock()

	m.log.Debugf("session saved | id=%s messages=%d", sess.ID, sess.MessageCount)
	return sess, nil
}

// ShouldAutoSave returns true if auto-save should trigger.
func (m *Manager) ShouldAutoSave() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.autoSaveEnabled || !m.isDirty {
		return false
	}

	return time.Since(m.lastAutoSave) >= m.autoSaveInterval
}

// Check runs an autosave if one is due. Returns true if a save happened.
func (m *Manager) Check() (bool, error) {
	if !m.ShouldAutoSave() {
		return false, nil
	}

	if _, err := m.Save(); err != nil {
		m.log.Warnf("autosave failed: %v", err)
		return false, err
	}
	return true, nil
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// AutoSavedMsg reports the outcome of an autosave.
type AutoSavedMsg struct {
	Session model.Session
	Err     error
}

// TickCmd returns a command that ticks periodically.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick, scheduling an autosave when one is due.
func (m *Manager) HandleTick() tea.Cmd {
	cmds := []tea.Cmd{TickCmd()}

	if m.ShouldAutoSave() {
		cmds = append(cmds, func() tea.Msg {
			sess, err := m.Save()
			return AutoSavedMsg{Session: sess, Err: err}
		})
	}

	return tea.Batch(cmds...)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetAutoSaveEnabled enables or disables auto-save.
func (m *Manager) SetAutoSaveEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSaveEnabled = enabled
}

// SetAutoSaveInterval updates the auto-save interval.
func (m *Manager) SetAutoSaveInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.autoSaveInterval = d
	}
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// SessionID returns the store ID of the last save, or "" before any save.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.savedID
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// Status represents the current session status.
type Status struct {
	SessionID    string
	StartTime    time.Time
	Duration     time.Duration
	IdleTime     time.Duration
	MessageCount int
	IsDirty      bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	return Status{
		SessionID:    m.savedID,
		StartTime:    m.startTime,
		Duration:     now.Sub(m.startTime),
		IdleTime:     now.Sub(m.lastActivity),
		MessageCount: len(m.messages),
		IsDirty:      m.isDirty,
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
