// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusConnecting, "Connecting..."},
		{StatusThinking, "Thinking..."},
		{StatusStreaming, "Streaming..."},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}

	for _, tc := range tests {
		got := tc.status.String()
		if got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	// Every status renders a non-empty icon
	statuses := []Status{StatusReady, StatusConnecting, StatusThinking, StatusStreaming, StatusError}
	for _, s := range statuses {
		if s.Icon() == "" {
			t.Errorf("Status(%d).Icon() should not be empty", s)
		}
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestNewStatusBar(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())

	if s.Source != "simulated" {
		t.Errorf("NewStatusBar() Source = %q, want simulated", s.Source)
	}

	if s.Status != StatusReady {
		t.Errorf("NewStatusBar() Status = %v, want StatusReady", s.Status)
	}

	if s.Width != 80 {
		t.Errorf("NewStatusBar() Width = %d, want 80", s.Width)
	}

	if !s.ShowShortcuts {
		t.Error("NewStatusBar() should show shortcuts by default")
	}
}

func TestStatusBar_SetSaved(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.Dirty = true

	at := time.Date(2025, 3, 1, 14, 2, 0, 0, time.UTC)
	s.SetSaved(at)

	if s.Dirty {
		t.Error("SetSaved() should clear the dirty flag")
	}

	if !s.LastSavedAt.Equal(at) {
		t.Errorf("SetSaved() LastSavedAt = %v, want %v", s.LastSavedAt, at)
	}
}

func TestStatusBar_ViewMedium(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(80)
	s.SessionTitle = "Trip planning"
	s.MessageCount = 12

	view := s.View()

	if !strings.Contains(view, "SIM") {
		t.Error("View() should show the source badge")
	}
	if !strings.Contains(view, "Trip planning") {
		t.Error("View() should show the session title")
	}
	if !strings.Contains(view, "12 msgs") {
		t.Error("View() should show the message count")
	}
	if !strings.Contains(view, "Ready") {
		t.Error("View() should show the status text")
	}
}

func TestStatusBar_ViewMediumTruncatesTitle(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(80)
	s.SessionTitle = "An unreasonably long session title for a medium bar"

	view := s.View()

	if !strings.Contains(view, "...") {
		t.Error("medium View() should truncate long titles")
	}
}

func TestStatusBar_ViewNarrow(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(50)
	s.MessageCount = 7
	s.Dirty = true
	s.Source = "network"

	view := s.View()

	if !strings.Contains(view, "[N]") {
		t.Errorf("narrow View() should show the single-letter badge, got %q", view)
	}
	if !strings.Contains(view, "7 msgs") {
		t.Error("narrow View() should show the message count")
	}
	if !strings.Contains(view, "*") {
		t.Error("narrow View() should mark unsaved state")
	}
}

func TestStatusBar_ViewWide(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(140)
	s.SessionTitle = "Trip planning"
	s.MessageCount = 1250
	s.TypingSpeed = 30
	s.LastSavedAt = time.Date(2025, 3, 1, 14, 2, 0, 0, time.UTC)

	view := s.View()

	if !strings.Contains(view, "1,250 msgs") {
		t.Error("wide View() should format the message count with separators")
	}
	if !strings.Contains(view, "30 cps") {
		t.Error("wide View() should show the typing speed")
	}
	if !strings.Contains(view, "saved 14:02") {
		t.Error("wide View() should show the save clock")
	}
	if !strings.Contains(view, "thinking") {
		t.Error("wide View() should show the thinking shortcut")
	}
	if !strings.Contains(view, "quit") {
		t.Error("wide View() should show the quit shortcut")
	}
}

func TestStatusBar_WideShortcutsFollowStatus(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(140)

	// Idle: export shortcut
	s.SetStatus(StatusReady)
	if !strings.Contains(s.View(), "export") {
		t.Error("idle wide View() should offer export")
	}

	// Streaming: cancel shortcut replaces it
	s.SetStatus(StatusStreaming)
	view := s.View()
	if !strings.Contains(view, "cancel") {
		t.Error("streaming wide View() should offer cancel")
	}
	if strings.Contains(view, "export") {
		t.Error("streaming wide View() should not offer export")
	}
}

func TestStatusBar_ReducedMotionShowsInstant(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(140)
	s.ReducedMotion = true

	if !strings.Contains(s.View(), "instant") {
		t.Error("wide View() should show 'instant' when the typing effect is off")
	}
}
