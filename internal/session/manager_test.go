// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

func newTestManager(cfg Config) (*Manager, *storage.SessionStore) {
	store := storage.NewSessionStore(storage.NewMemStore(), logging.Nop())
	return NewManager(store, cfg, logging.Nop()), store
}

func conversation(pairs ...string) []model.Message {
	msgs := make([]model.Message, 0, len(pairs))
	for i, content := range pairs {
		if i%2 == 0 {
			msgs = append(msgs, model.NewUserMessage(content))
		} else {
			msgs = append(msgs, model.NewAssistantMessage(content))
		}
	}
	return msgs
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.AutoSaveEnabled {
		t.Error("expected auto-save enabled by default")
	}
	if cfg.AutoSaveInterval != 30*time.Second {
		t.Errorf("expected 30s auto-save interval, got %v", cfg.AutoSaveInterval)
	}
}

func TestManager_TrackMarksDirty(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	if m.IsDirty() {
		t.Error("new manager should not be dirty")
	}

	m.Track(conversation("hello", "hi there"))

	if !m.IsDirty() {
		t.Error("expected dirty after tracking messages")
	}
}

func TestManager_TrackEmptyClearsWithoutDirty(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.Track(conversation("hello", "hi there"))
	m.Track(nil)

	if m.IsDirty() {
		t.Error("tracking an empty conversation should not leave the session dirty")
	}
	if got := m.GetStatus().MessageCount; got != 0 {
		t.Errorf("expected 0 tracked messages, got %d", got)
	}
}

func TestManager_TrackCopiesMessages(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	msgs := conversation("original", "reply")
	m.Track(msgs)
	msgs[0].Content = "mutated"

	sess, err := m.Save()
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if sess.Messages[0].Content != "original" {
		t.Errorf("manager should hold its own copy, got %q", sess.Messages[0].Content)
	}
}

func TestManager_SavePersistsAndMarksClean(t *testing.T) {
	m, store := newTestManager(DefaultConfig())

	m.Track(conversation("what is a monad", "a monoid in the category of endofunctors"))

	sess, err := m.Save()
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if sess.ID == "" {
		t.Error("expected saved session to have an ID")
	}
	if m.IsDirty() {
		t.Error("expected clean after save")
	}
	if m.SessionID() != sess.ID {
		t.Errorf("SessionID() = %q, want %q", m.SessionID(), sess.ID)
	}
	if got := len(store.List()); got != 1 {
		t.Errorf("expected 1 stored session, got %d", got)
	}
}

func TestManager_SaveEmptyFails(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	if _, err := m.Save(); err == nil {
		t.Error("expected error saving an empty conversation")
	}
}

func TestManager_RepeatedSaveDeduplicates(t *testing.T) {
	m, store := newTestManager(DefaultConfig())

	msgs := conversation("ping", "pong")
	m.Track(msgs)
	first, err := m.Save()
	if err != nil {
		t.Fatalf("first Save() error: %v", err)
	}

	m.Track(msgs)
	second, err := m.Save()
	if err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("identical conversations should reuse the session, got %q then %q", first.ID, second.ID)
	}
	if got := len(store.List()); got != 1 {
		t.Errorf("expected 1 stored session after duplicate save, got %d", got)
	}
}

func TestManager_ShouldAutoSave(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		setup func(*Manager)
		want  bool
	}{
		{
			name:  "clean session not due",
			cfg:   Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond},
			setup: func(m *Manager) { time.Sleep(5 * time.Millisecond) },
			want:  false,
		},
		{
			name: "dirty and past interval",
			cfg:  Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond},
			setup: func(m *Manager) {
				m.Track(conversation("hello", "hi"))
				time.Sleep(5 * time.Millisecond)
			},
			want: true,
		},
		{
			name: "dirty but disabled",
			cfg:  Config{AutoSaveEnabled: false, AutoSaveInterval: time.Millisecond},
			setup: func(m *Manager) {
				m.Track(conversation("hello", "hi"))
				time.Sleep(5 * time.Millisecond)
			},
			want: false,
		},
		{
			name: "dirty but interval not elapsed",
			cfg:  Config{AutoSaveEnabled: true, AutoSaveInterval: time.Hour},
			setup: func(m *Manager) {
				m.Track(conversation("hello", "hi"))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(tt.cfg)
			tt.setup(m)

			if got := m.ShouldAutoSave(); got != tt.want {
				t.Errorf("ShouldAutoSave() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_CheckAutoSaves(t *testing.T) {
	m, store := newTestManager(Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond})

	m.Track(conversation("save me", "will do"))
	time.Sleep(5 * time.Millisecond)

	saved, err := m.Check()
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !saved {
		t.Fatal("expected Check() to run an autosave")
	}
	if m.IsDirty() {
		t.Error("expected clean after autosave")
	}
	if got := len(store.List()); got != 1 {
		t.Errorf("expected 1 stored session, got %d", got)
	}

	// A second check with no new changes should be a no-op.
	saved, err = m.Check()
	if err != nil {
		t.Fatalf("second Check() error: %v", err)
	}
	if saved {
		t.Error("expected no autosave without new changes")
	}
}

func TestManager_ResumeContinuesSession(t *testing.T) {
	m, store := newTestManager(DefaultConfig())

	m.Track(conversation("first", "reply"))
	sess, err := m.Save()
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m2 := NewManager(store, DefaultConfig(), logging.Nop())
	loaded, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	m2.Resume(loaded)

	if m2.SessionID() != sess.ID {
		t.Errorf("resumed SessionID() = %q, want %q", m2.SessionID(), sess.ID)
	}
	if m2.IsDirty() {
		t.Error("resumed session should start clean")
	}
	if got := m2.GetStatus().MessageCount; got != 2 {
		t.Errorf("expected 2 resumed messages, got %d", got)
	}
}

func TestManager_ResetDiscardsState(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.Track(conversation("hello", "hi"))
	if _, err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m.Reset()

	if m.IsDirty() {
		t.Error("expected clean after reset")
	}
	if m.SessionID() != "" {
		t.Errorf("expected empty session ID after reset, got %q", m.SessionID())
	}
	if got := m.GetStatus().MessageCount; got != 0 {
		t.Errorf("expected 0 messages after reset, got %d", got)
	}
}

func TestManager_GetStatus(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.Track(conversation("one", "two", "three"))
	status := m.GetStatus()

	if status.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", status.MessageCount)
	}
	if !status.IsDirty {
		t.Error("expected dirty status")
	}
	if status.Duration < 0 {
		t.Errorf("expected non-negative duration, got %v", status.Duration)
	}
	if status.StartTime.IsZero() {
		t.Error("expected start time to be set")
	}
}

func TestManager_HandleTickSchedulesAutosave(t *testing.T) {
	m, store := newTestManager(Config{AutoSaveEnabled: true, AutoSaveInterval: time.Millisecond})

	m.Track(conversation("tick", "tock"))
	time.Sleep(5 * time.Millisecond)

	cmd := m.HandleTick()
	if cmd == nil {
		t.Fatal("expected a command from HandleTick")
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected HandleTick to batch the next tick with the autosave")
	}

	// Run the batched commands the way the runtime would. The tick command
	// blocks for its interval, so collect results on a channel instead of
	// running them inline.
	msgs := make(chan tea.Msg, len(batch))
	for _, c := range batch {
		go func(c tea.Cmd) { msgs <- c() }(c)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-msgs:
			if saved, ok := msg.(AutoSavedMsg); ok {
				if saved.Err != nil {
					t.Fatalf("autosave error: %v", saved.Err)
				}
				if got := len(store.List()); got != 1 {
					t.Errorf("expected 1 stored session, got %d", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("autosave never ran")
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds only", 45 * time.Second, "45s"},
		{"exact minutes", 3 * time.Minute, "3m"},
		{"minutes and seconds", 3*time.Minute + 20*time.Second, "3m 20s"},
		{"zero", 0, "0s"},
		{"over an hour", 90 * time.Minute, "90m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
