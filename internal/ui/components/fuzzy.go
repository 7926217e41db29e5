// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// Scoring weights. A hit is worth more when it continues a run, lands on
// the first rune, opens a word, or matches the typed case exactly. Long
// targets pay a small tax so "/share" outranks "/sessions search" for "sh".
const (
	scoreHit         = 1
	scoreRun         = 5
	scoreWordStart   = 7
	scoreTargetStart = 10
	scoreCaseMatch   = 2
	lengthTaxDivisor = 4
)

// FuzzyMatch reports whether every rune of query appears in target in
// order, and scores the match (higher is better). Matching ignores case;
// case agreement only adds to the score. The empty query matches anything
// with score zero.
//
// Typing "sh" in the command popup ranks "/share" above "/sessions" this
// way: both match, but "/share" scores the consecutive-run bonus.
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	qFold := []rune(strings.ToLower(query))
	tFold := []rune(strings.ToLower(target))
	if len(qFold) > len(tFold) {
		return 0, false
	}

	qOrig := []rune(query)
	tOrig := []rune(target)

	qi := 0
	prevHit := -1

	for ti := 0; ti < len(tFold) && qi < len(qFold); ti++ {
		if tFold[ti] != qFold[qi] {
			continue
		}

		hit := scoreHit
		if prevHit == ti-1 {
			hit += scoreRun
		}
		if ti == 0 {
			hit += scoreTargetStart
		}
		if wordBoundary(tFold, ti) {
			hit += scoreWordStart
		}
		if ti < len(tOrig) && qi < len(qOrig) && tOrig[ti] == qOrig[qi] {
			hit += scoreCaseMatch
		}

		score += hit
		prevHit = ti
		qi++
	}

	if qi < len(qFold) {
		return score, false
	}
	return score - len(tFold)/lengthTaxDivisor, true
}

// wordBoundary reports whether the rune at pos opens a word: the start of
// the string, the rune after a space, slash, dash, or underscore, or an
// uppercase rune following a lowercase one.
func wordBoundary(target []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(target) {
		return false
	}
	switch target[pos-1] {
	case ' ', '/', '-', '_':
		return true
	}
	return unicode.IsLower(target[pos-1]) && unicode.IsUpper(target[pos])
}

// FuzzyMatchScore returns the match score, or 0 when query does not match.
func FuzzyMatchScore(query, target string) int {
	score, matched := FuzzyMatch(query, target)
	if !matched {
		return 0
	}
	return score
}

// FuzzyMatches reports whether query fuzzy-matches target.
func FuzzyMatches(query, target string) bool {
	_, matched := FuzzyMatch(query, target)
	return matched
}

// =============================================================================
// FILTERING
// =============================================================================

// ScoredMatch is one surviving target with its score.
type ScoredMatch struct {
	Target string
	Score  int
	Data   interface{}
}

// FuzzyFilter keeps the targets that match query, best score first. The
// command popup and the session picker both feed their candidate lists
// through here.
func FuzzyFilter(query string, targets []string) []ScoredMatch {
	var kept []ScoredMatch
	for _, target := range targets {
		if score, ok := FuzzyMatch(query, target); ok {
			kept = append(kept, ScoredMatch{Target: target, Score: score})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

// =============================================================================
// HIGHLIGHTING
// =============================================================================

// HighlightMatch returns the target positions the query runes landed on,
// in order, for bolding matched characters in a popup row. Nil for the
// empty query.
func HighlightMatch(query, target string) (positions []int) {
	if query == "" {
		return nil
	}

	qFold := []rune(strings.ToLower(query))
	tFold := []rune(strings.ToLower(target))

	qi := 0
	for ti := 0; ti < len(tFold) && qi < len(qFold); ti++ {
		if tFold[ti] == qFold[qi] {
			positions = append(positions, ti)
			qi++
		}
	}
	return positions
}
