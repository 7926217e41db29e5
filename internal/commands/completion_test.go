// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	"strings"
	"testing"
)

// TestCompleterComplete tests basic completion functionality
func TestCompleterComplete(t *testing.T) {
	completer := NewCompleter(NewRegistry())
	completer.SessionsFn = func() []SessionInfo {
		return []SessionInfo{
			{ID: "abc123", Title: "First chat"},
			{ID: "def456", Title: "Second chat"},
		}
	}

	tests := []struct {
		name        string
		input       string
		cursorPos   int
		wantMinimum int    // minimum expected completions
		wantPrefix  string // expected prefix of first completion
	}{
		{
			name:        "empty input",
			input:       "/",
			cursorPos:   1,
			wantMinimum: 10, // All visible built-ins
			wantPrefix:  "/",
		},
		{
			name:        "partial command",
			input:       "/h",
			cursorPos:   2,
			wantMinimum: 1, // /help (plus its /h alias)
			wantPrefix:  "/h",
		},
		{
			name:        "command with trailing space starts session completion",
			input:       "/load ",
			cursorPos:   6,
			wantMinimum: 2, // Both saved sessions
		},
		{
			name:        "partial session id",
			input:       "/load ab",
			cursorPos:   8,
			wantMinimum: 1,
			wantPrefix:  "abc",
		},
		{
			name:        "no match",
			input:       "/xyz",
			cursorPos:   4,
			wantMinimum: 0,
		},
		{
			name:        "plain text does not complete",
			input:       "hello",
			cursorPos:   5,
			wantMinimum: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := completer.Complete(tt.input, tt.cursorPos)
			if len(completions) < tt.wantMinimum {
				t.Errorf("Complete() got %d completions, want at least %d", len(completions), tt.wantMinimum)
			}
			if tt.wantPrefix != "" && len(completions) > 0 {
				if !strings.HasPrefix(completions[0].Value, tt.wantPrefix) {
					t.Errorf("First completion %q doesn't start with %q", completions[0].Value, tt.wantPrefix)
				}
			}
		})
	}
}

// TestCompleterEnumArgs tests enum argument completion for built-in commands
func TestCompleterEnumArgs(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	tests := []struct {
		name      string
		input     string
		wantCount int
		wantFirst string
	}{
		{
			name:      "export formats",
			input:     "/export ",
			wantCount: 4, // text, markdown, json, pdf
		},
		{
			name:      "export partial format",
			input:     "/export ma",
			wantCount: 1,
			wantFirst: "markdown",
		},
		{
			name:      "doc actions",
			input:     "/doc ",
			wantCount: 3, // save, show, delete
		},
		{
			name:      "theme partial",
			input:     "/theme d",
			wantCount: 1,
			wantFirst: "dark",
		},
		{
			name:      "source values",
			input:     "/source ",
			wantCount: 2, // simulated, network
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := completer.Complete(tt.input, len(tt.input))
			if len(completions) != tt.wantCount {
				t.Errorf("Complete(%q) got %d completions, want %d", tt.input, len(completions), tt.wantCount)
			}
			if tt.wantFirst != "" && len(completions) > 0 && completions[0].Value != tt.wantFirst {
				t.Errorf("First completion = %q, want %q", completions[0].Value, tt.wantFirst)
			}
		})
	}
}

// TestCompleterCallbacks tests custom completion callbacks
func TestCompleterCallbacks(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	completer.SessionsFn = func() []SessionInfo {
		return []SessionInfo{
			{ID: "alpha1", Title: "Planning"},
			{ID: "beta2", Title: "Design review"},
		}
	}
	completer.DocsFn = func() []DocumentInfo {
		return []DocumentInfo{
			{ID: "readme", Name: "Release notes", Size: 1024},
			{ID: "plan", Name: "Project outline", Size: 2048},
		}
	}
	completer.ConfigFn = func() []string {
		return []string{"typing.speed", "typing.reduced_motion", "ui.theme"}
	}

	// Session completion for /delete
	completions := completer.Complete("/delete a", 9)
	if len(completions) != 1 || completions[0].Value != "alpha1" {
		t.Errorf("Session completion got %v, want [alpha1]", completions)
	}

	// Document completion for /doc show (second argument)
	completions = completer.Complete("/doc show re", 12)
	if len(completions) != 1 || completions[0].Value != "readme" {
		t.Errorf("Document completion got %v, want [readme]", completions)
	}

	// Document description carries the size
	if len(completions) == 1 && completions[0].Description != "1 KB" {
		t.Errorf("Document description = %q, want %q", completions[0].Description, "1 KB")
	}

	// Config key completion
	completions = completer.Complete("/config ty", 10)
	if len(completions) != 2 {
		t.Errorf("Config completion got %d results, want 2", len(completions))
	}
	for _, c := range completions {
		if !strings.HasPrefix(c.Value, "typing.") {
			t.Errorf("Config completion %q should start with typing.", c.Value)
		}
	}
}

// TestCompleterConfigDefault tests that /config completes from the built-in key list
func TestCompleterConfigDefault(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	completions := completer.Complete("/config typing.", 15)
	if len(completions) == 0 {
		t.Fatal("Config completion should fall back to built-in keys")
	}
	for _, c := range completions {
		if !strings.HasPrefix(c.Value, "typing.") {
			t.Errorf("Config completion %q should start with typing.", c.Value)
		}
	}
}

// TestCalculateScore tests the scoring algorithm
func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		partial    string
		wantHigher bool // true if score should be > 100
	}{
		{
			name:       "exact match",
			value:      "help",
			partial:    "help",
			wantHigher: true,
		},
		{
			name:       "prefix match",
			value:      "help",
			partial:    "hel",
			wantHigher: true,
		},
		{
			name:       "no match",
			value:      "help",
			partial:    "xyz",
			wantHigher: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := calculateScore(tt.value, tt.partial)
			if tt.wantHigher && score <= 100 {
				t.Errorf("calculateScore() = %d, want > 100", score)
			}
			if !tt.wantHigher && score > 100 {
				t.Errorf("calculateScore() = %d, want <= 100", score)
			}
		})
	}
}

// TestSortCompletions tests that completions are sorted by score
func TestSortCompletions(t *testing.T) {
	completions := []Completion{
		{Value: "a", Score: 50},
		{Value: "b", Score: 150},
		{Value: "c", Score: 100},
	}

	sortCompletions(completions)

	// Should be sorted by score descending
	if completions[0].Value != "b" {
		t.Errorf("First completion should be 'b' (highest score), got %q", completions[0].Value)
	}
	if completions[1].Value != "c" {
		t.Errorf("Second completion should be 'c', got %q", completions[1].Value)
	}
	if completions[2].Value != "a" {
		t.Errorf("Third completion should be 'a' (lowest score), got %q", completions[2].Value)
	}
}

// TestTruncate tests the truncation helper
func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "no truncation needed",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exact length",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "truncate with ellipsis",
			input:  "hello world",
			maxLen: 8,
			want:   "hello...",
		},
		{
			name:   "unicode truncation no ellipsis",
			input:  "你好世界",
			maxLen: 4,
			want:   "你好世界",
		},
		{
			name:   "unicode truncation with ellipsis",
			input:  "你好世界!",
			maxLen: 4,
			want:   "你...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFormatFileSize tests file size formatting
func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{
			name: "bytes",
			size: 100,
			want: "100 B",
		},
		{
			name: "kilobytes",
			size: 1024,
			want: "1 KB",
		},
		{
			name: "kilobytes with decimal",
			size: 1536,
			want: "1.5 KB",
		},
		{
			name: "megabytes",
			size: 1024 * 1024,
			want: "1 MB",
		},
		{
			name: "gigabytes",
			size: 1024 * 1024 * 1024,
			want: "1 GB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatFileSize(tt.size)
			if got != tt.want {
				t.Errorf("formatFileSize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCompletionState tests the CompletionState navigation
func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()

	// Initially empty
	if cs.Visible {
		t.Error("New CompletionState should not be visible")
	}

	// Add completions
	completions := []Completion{
		{Value: "a"},
		{Value: "b"},
		{Value: "c"},
	}
	cs.Update("test", completions)

	if !cs.Visible {
		t.Error("CompletionState should be visible after Update")
	}

	if cs.Selected != 0 {
		t.Errorf("Initial selection should be 0, got %d", cs.Selected)
	}

	// Test Next
	cs.Next()
	if cs.Selected != 1 {
		t.Errorf("After Next(), selection should be 1, got %d", cs.Selected)
	}

	// Test wrapping
	cs.Next()
	cs.Next() // Should wrap to 0
	if cs.Selected != 0 {
		t.Errorf("After wrapping, selection should be 0, got %d", cs.Selected)
	}

	// Test Prev
	cs.Prev() // Should wrap to last
	if cs.Selected != 2 {
		t.Errorf("After Prev() from 0, selection should be 2, got %d", cs.Selected)
	}

	// Test Accept
	accepted := cs.Accept()
	if accepted != "c" {
		t.Errorf("Accept() should return 'c', got %q", accepted)
	}

	// Test Clear
	cs.Clear()
	if cs.Visible {
		t.Error("CompletionState should not be visible after Clear")
	}
}
