// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"testing"
)

// =============================================================================
// FUZZY MATCH TESTS
// =============================================================================

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		target  string
		matched bool
	}{
		{"empty query matches", "", "/save", true},
		{"exact", "/save", "/save", true},
		{"prefix", "/sa", "/save", true},
		{"subsequence", "sv", "/save", true},
		{"scattered", "hlp", "/help", true},
		{"case insensitive", "SV", "/save", true},
		{"no match", "xyz", "/save", false},
		{"out of order", "vs", "/save", false},
		{"query longer than target", "/sessions", "/save", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, matched := FuzzyMatch(tc.query, tc.target)
			if matched != tc.matched {
				t.Errorf("FuzzyMatch(%q, %q) matched = %v, want %v", tc.query, tc.target, matched, tc.matched)
			}
		})
	}
}

func TestFuzzyMatch_ScoringPreferences(t *testing.T) {
	// Consecutive beats scattered
	consecutive := FuzzyMatchScore("sa", "/save")
	scattered := FuzzyMatchScore("se", "/save")
	if consecutive <= scattered {
		t.Errorf("consecutive %d should beat scattered %d", consecutive, scattered)
	}

	// Shorter target beats longer for the same query
	short := FuzzyMatchScore("s", "/save")
	long := FuzzyMatchScore("s", "/sessions and more words")
	if short <= long {
		t.Errorf("short target %d should beat long target %d", short, long)
	}
}

func TestFuzzyMatchScore_FailedMatchIsZero(t *testing.T) {
	if got := FuzzyMatchScore("xyz", "/save"); got != 0 {
		t.Errorf("FuzzyMatchScore(no match) = %d, want 0", got)
	}
}

func TestFuzzyMatches(t *testing.T) {
	if !FuzzyMatches("sv", "/save") {
		t.Error("FuzzyMatches(sv, /save) should be true")
	}
	if FuzzyMatches("zz", "/save") {
		t.Error("FuzzyMatches(zz, /save) should be false")
	}
}

// =============================================================================
// FUZZY FILTER TESTS
// =============================================================================

func TestFuzzyFilter(t *testing.T) {
	targets := []string{"/save", "/sessions", "/search", "/help"}

	matches := FuzzyFilter("se", targets)

	// /help has no 's', so three of the four match
	if len(matches) != 3 {
		t.Fatalf("FuzzyFilter() = %d matches, want 3", len(matches))
	}

	for _, m := range matches {
		if m.Target == "/help" {
			t.Error("FuzzyFilter() should not include /help")
		}
	}

	// Sorted by score descending
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Error("FuzzyFilter() results should be sorted by score")
		}
	}
}

func TestFuzzyFilter_EmptyQuery(t *testing.T) {
	targets := []string{"/a", "/b"}
	matches := FuzzyFilter("", targets)

	if len(matches) != 2 {
		t.Errorf("empty query should match everything, got %d", len(matches))
	}
}

// =============================================================================
// HIGHLIGHT TESTS
// =============================================================================

func TestHighlightMatch(t *testing.T) {
	positions := HighlightMatch("sv", "/save")

	// '/save': s at 1, v at 3
	if len(positions) != 2 || positions[0] != 1 || positions[1] != 3 {
		t.Errorf("HighlightMatch(sv, /save) = %v, want [1 3]", positions)
	}

	if got := HighlightMatch("", "/save"); got != nil {
		t.Errorf("HighlightMatch(empty) = %v, want nil", got)
	}
}

// =============================================================================
// WORD BOUNDARY TESTS
// =============================================================================

func TestWordBoundary(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  int
		want bool
	}{
		{"start of string", "hello", 0, true},
		{"mid-word", "hello", 2, false},
		{"after space", "a b", 2, true},
		{"after slash", "/cmd", 1, true},
		{"after dash", "a-b", 2, true},
		{"after underscore", "a_b", 2, true},
		{"camelCase", "aB", 1, true},
		{"past end", "ab", 5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := wordBoundary([]rune(tc.text), tc.pos)
			if got != tc.want {
				t.Errorf("wordBoundary(%q, %d) = %v, want %v", tc.text, tc.pos, got, tc.want)
			}
		})
	}
}
