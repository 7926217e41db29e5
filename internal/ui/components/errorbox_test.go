// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// ===== ERROR BANNER =====

func TestNewErrorBanner(t *testing.T) {
	theme := styles.NewTheme()
	banner := NewErrorBanner(theme)

	if banner.Title != "Response failed" {
		t.Errorf("Title = %q, want %q", banner.Title, "Response failed")
	}
	if banner.HasError() {
		t.Error("new banner should have no error")
	}
	if banner.View() != "" {
		t.Error("empty banner should render nothing")
	}
}

func TestErrorBanner_SetError(t *testing.T) {
	theme := styles.NewTheme()
	banner := NewErrorBanner(theme)

	banner.SetError("request failed: dial tcp: connection refused")

	if !banner.HasError() {
		t.Error("HasError() = false after SetError")
	}
	if banner.Tip == "" {
		t.Error("expected a recovery tip for connection refused")
	}

	view := banner.View()
	if !strings.Contains(view, "Response failed") {
		t.Errorf("view missing title: %q", view)
	}
	if !strings.Contains(view, "connection refused") {
		t.Errorf("view missing error message: %q", view)
	}
	if !strings.Contains(view, "tip:") {
		t.Errorf("view missing tip line: %q", view)
	}
}

func TestErrorBanner_Clear(t *testing.T) {
	theme := styles.NewTheme()
	banner := NewErrorBanner(theme)

	banner.SetError("unexpected status 500: boom")
	banner.Clear()

	if banner.HasError() {
		t.Error("HasError() = true after Clear")
	}
	if banner.View() != "" {
		t.Error("cleared banner should render nothing")
	}
}

func TestErrorBanner_NoTipForUnknownError(t *testing.T) {
	theme := styles.NewTheme()
	banner := NewErrorBanner(theme)

	banner.SetError("something completely unexpected happened")

	if banner.Tip != "" {
		t.Errorf("Tip = %q, want empty for unrecognized error", banner.Tip)
	}
	if !strings.Contains(banner.View(), "unexpected happened") {
		t.Error("view should still show the raw message")
	}
}

// ===== RECOVERY TIPS =====

func TestTipForError(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantPart string
	}{
		{"not configured", "chat endpoint not configured", "chat.endpoint_url"},
		{"connection refused", "request failed: dial tcp 127.0.0.1:8080: connection refused", "reachable"},
		{"no such host", "request failed: dial tcp: lookup chat.example: no such host", "reachable"},
		{"deadline", "request failed: context deadline exceeded", "request_timeout_secs"},
		{"timeout", "request failed: Client.Timeout exceeded", "request_timeout_secs"},
		{"unauthorized", "unexpected status 401: unauthorized", "authentication"},
		{"forbidden", "unexpected status 403: forbidden", "authentication"},
		{"rate limited", "unexpected status 429: too many requests", "rate limiting"},
		{"server error", "unexpected status 502: bad gateway", "/source simulated"},
		{"partial", "stream error (partial content received: 120 chars): unexpected EOF", "kept"},
		{"unknown", "flux capacitor misaligned", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TipForError(tt.message)
			if tt.wantPart == "" {
				if got != "" {
					t.Errorf("TipForError(%q) = %q, want empty", tt.message, got)
				}
				return
			}
			if !strings.Contains(got, tt.wantPart) {
				t.Errorf("TipForError(%q) = %q, want substring %q", tt.message, got, tt.wantPart)
			}
		})
	}
}

func TestTipForError_CaseInsensitive(t *testing.T) {
	if TipForError("REQUEST FAILED: CONNECTION REFUSED") == "" {
		t.Error("matching should ignore case")
	}
}
