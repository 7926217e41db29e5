// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typing

import (
	"time"
)

// =============================================================================
// WHOLE-STRING REVEAL
// =============================================================================

// Reveal animates a complete string into view at a fixed rate. Unlike
// Typer it knows the full text up front: each call to Advance computes the
// reveal index from elapsed wall-clock time, so the animation stays on
// schedule no matter how irregular the caller's redraw loop is.
//
// The completion callback fires exactly once, on the first Advance where
// the whole string is visible. With reduced motion the first Advance shows
// everything and fires the callback immediately.
//
// Reveal is not safe for concurrent use; drive it from a single render loop.
type Reveal struct {
	runes         []rune
	speed         int
	start         time.Time
	reducedMotion bool
	onComplete    func()
	completed     bool
}

// NewReveal starts a reveal of text at the given characters-per-second
// rate, beginning now. Rates outside (0, maxSpeed] fall back to
// DefaultSpeed. onComplete may be nil.
func NewReveal(text string, speed int, reducedMotion bool, onComplete func()) *Reveal {
	if speed <= 0 || speed > maxSpeed {
		speed = DefaultSpeed
	}
	return &Reveal{
		runes:         []rune(text),
		speed:         speed,
		start:         time.Now(),
		reducedMotion: reducedMotion,
		onComplete:    onComplete,
	}
}

// Advance returns the currently visible prefix and whether the reveal has
// finished. Call it once per redraw.
func (r *Reveal) Advance() (string, bool) {
	return r.AdvanceAt(time.Now())
}

// AdvanceAt is Advance with an explicit clock reading.
func (r *Reveal) AdvanceAt(now time.Time) (string, bool) {
	idx := r.indexAt(now)
	if idx >= len(r.runes) {
		r.finish()
		return string(r.runes), true
	}
	return string(r.runes[:idx]), false
}

// indexAt computes the reveal index from elapsed time. UNICODE: the index
// counts runes, so multibyte characters are never split mid-sequence.
func (r *Reveal) indexAt(now time.Time) int {
	if r.reducedMotion {
		return len(r.runes)
	}
	elapsed := now.Sub(r.start)
	if elapsed <= 0 {
		return 0
	}
	idx := int(elapsed.Milliseconds() * int64(r.speed) / 1000)
	if idx > len(r.runes) {
		idx = len(r.runes)
	}
	return idx
}

// finish fires the completion callback on the first terminal Advance.
func (r *Reveal) finish() {
	if r.completed {
		return
	}
	r.completed = true
	if r.onComplete != nil {
		r.onComplete()
	}
}

// Done reports whether the reveal has completed.
func (r *Reveal) Done() bool {
	return r.completed
}

// Full returns the complete text being revealed.
func (r *Reveal) Full() string {
	return string(r.runes)
}

// Remaining returns how long until the full text is visible at the
// configured rate, zero when already complete.
func (r *Reveal) Remaining(now time.Time) time.Duration {
	idx := r.indexAt(now)
	left := len(r.runes) - idx
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * time.Second / time.Duration(r.speed)
}
