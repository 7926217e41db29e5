// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typing paces how streamed text becomes visible. It decouples
// arrival rate from display rate: chunks append to an internal buffer
// immediately, while the visible buffer advances no faster than the
// configured rate, keeping slow terminals smooth and fast streams readable.
package typing

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// TYPER
// =============================================================================

const (
	// DefaultSpeed is the default reveal rate in characters per second.
	// It yields a ~33ms minimum flush interval, a comfortable 30fps.
	DefaultSpeed = 30

	// maxSpeed caps configured rates. Above this the throttle interval
	// rounds toward zero and stops meaning anything.
	maxSpeed = 120
)

// Typer is an append-only text buffer with a throttled visible view.
//
// Appended text lands in the internal buffer at once. The visible buffer
// catches up either immediately, when the minimum interval since the last
// flush has already passed, or via a single pending timer scheduled for
// the remaining wait. At most one timer is outstanding per Typer; Flush
// and Reset cancel it.
//
// Thread-safety: all operations are mutex-protected since appends arrive
// from a streaming goroutine while reads happen on the render loop.
type Typer struct {
	mu        sync.Mutex
	internal  strings.Builder
	visible   string
	lastFlush time.Time
	pending   *time.Timer

	speed         int
	minInterval   time.Duration
	reducedMotion bool
	notify        func()
}

// Option configures a Typer.
type Option func(*Typer)

// WithReducedMotion disables throttling entirely. Appends become visible
// immediately and no timers are scheduled.
func WithReducedMotion(on bool) Option {
	return func(t *Typer) { t.reducedMotion = on }
}

// WithNotify registers a callback invoked after every flush, including
// timer-driven ones. The callback runs outside the Typer lock and may be
// called from a timer goroutine.
func WithNotify(fn func()) Option {
	return func(t *Typer) { t.notify = fn }
}

// New creates a Typer revealing text at the given characters-per-second
// rate. Rates outside (0, maxSpeed] fall back to DefaultSpeed.
func New(speed int, opts ...Option) *Typer {
	if speed <= 0 || speed > maxSpeed {
		speed = DefaultSpeed
	}
	t := &Typer{
		speed:       speed,
		minInterval: time.Second / time.Duration(speed),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Speed returns the configured reveal rate in characters per second.
func (t *Typer) Speed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speed
}

// Append adds text to the internal buffer and advances the visible buffer
// as the rate allows. The first append after construction or Reset is
// always immediate.
func (t *Typer) Append(text string) {
	t.mu.Lock()
	t.internal.WriteString(text)

	if t.reducedMotion {
		t.flushLocked()
		notify := t.notify
		t.mu.Unlock()
		if notify != nil {
			notify()
		}
		return
	}

	elapsed := time.Since(t.lastFlush)
	if t.lastFlush.IsZero() || elapsed >= t.minInterval {
		t.flushLocked()
		notify := t.notify
		t.mu.Unlock()
		if notify != nil {
			notify()
		}
		return
	}

	// One timer covers any number of appends arriving inside the window;
	// when it fires it reveals everything buffered so far.
	if t.pending == nil {
		t.pending = time.AfterFunc(t.minInterval-elapsed, t.timerFlush)
	}
	t.mu.Unlock()
}

// timerFlush runs on the timer goroutine when the throttle window closes.
func (t *Typer) timerFlush() {
	t.mu.Lock()
	t.pending = nil
	t.flushLocked()
	notify := t.notify
	t.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// flushLocked reveals the entire internal buffer. Caller holds the lock.
func (t *Typer) flushLocked() {
	t.visible = t.internal.String()
	t.lastFlush = time.Now()
}

// Flush forces the visible buffer to match the internal buffer now,
// canceling any pending timer. Use when a stream completes so the tail is
// never held back by the throttle.
func (t *Typer) Flush() string {
	t.mu.Lock()
	t.cancelTimerLocked()
	t.flushLocked()
	out := t.visible
	t.mu.Unlock()
	return out
}

// Reset clears both buffers and cancels any pending timer.
func (t *Typer) Reset() {
	t.mu.Lock()
	t.cancelTimerLocked()
	t.internal.Reset()
	t.visible = ""
	t.lastFlush = time.Time{}
	t.mu.Unlock()
}

func (t *Typer) cancelTimerLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Visible returns the currently revealed text.
func (t *Typer) Visible() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Full returns everything appended so far, revealed or not.
func (t *Typer) Full() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.internal.String()
}

// Pending reports whether a flush timer is outstanding.
func (t *Typer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Behind reports whether the visible buffer lags the internal buffer.
func (t *Typer) Behind() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visible) < t.internal.Len()
}
