// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typing

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTyper_FirstAppendIsImmediate(t *testing.T) {
	ty := New(10) // 100ms interval
	ty.Append("hello")
	if got := ty.Visible(); got != "hello" {
		t.Errorf("Visible = %q, want %q", got, "hello")
	}
	if ty.Pending() {
		t.Error("no timer should be pending after an immediate flush")
	}
}

func TestTyper_ThrottlesWithinInterval(t *testing.T) {
	ty := New(10) // 100ms interval
	ty.Append("a")
	ty.Append("b") // inside the window, must wait

	if got := ty.Visible(); got != "a" {
		t.Errorf("Visible = %q, want %q before the window closes", got, "a")
	}
	if !ty.Pending() {
		t.Error("expected a pending flush timer")
	}
	if !ty.Behind() {
		t.Error("visible buffer should lag the internal buffer")
	}

	// RELIABILITY: generous deadline so slow CI machines do not flake.
	deadline := time.After(2 * time.Second)
	for ty.Visible() != "ab" {
		select {
		case <-deadline:
			t.Fatalf("timer flush never caught up, Visible = %q", ty.Visible())
		case <-time.After(10 * time.Millisecond):
		}
	}
	if ty.Pending() {
		t.Error("timer should be cleared after firing")
	}
}

func TestTyper_SingleTimerCoalescesAppends(t *testing.T) {
	var flushes atomic.Int32
	ty := New(1, WithNotify(func() { flushes.Add(1) })) // 1s interval

	ty.Append("one")          // immediate flush
	for i := 0; i < 10; i++ { // all land inside one window
		ty.Append(" more")
	}

	deadline := time.After(5 * time.Second)
	for ty.Behind() {
		select {
		case <-deadline:
			t.Fatal("coalesced flush never arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// One immediate flush plus one coalesced timer flush.
	if n := flushes.Load(); n != 2 {
		t.Errorf("flush count = %d, want 2", n)
	}
}

func TestTyper_FlushForcesCatchUp(t *testing.T) {
	ty := New(5) // 200ms interval
	ty.Append("hello")
	ty.Append(" world")

	got := ty.Flush()
	if got != "hello world" {
		t.Errorf("Flush = %q, want %q", got, "hello world")
	}
	if ty.Pending() {
		t.Error("Flush should cancel the pending timer")
	}
	if ty.Behind() {
		t.Error("nothing should be held back after Flush")
	}
}

func TestTyper_ResetClearsEverything(t *testing.T) {
	ty := New(5)
	ty.Append("hello")
	ty.Append(" world")
	ty.Reset()

	if ty.Visible() != "" || ty.Full() != "" {
		t.Errorf("Reset left content: visible=%q full=%q", ty.Visible(), ty.Full())
	}
	if ty.Pending() {
		t.Error("Reset should cancel the pending timer")
	}

	// A fresh append after Reset behaves like the first ever append.
	ty.Append("new")
	if ty.Visible() != "new" {
		t.Errorf("post-reset append not immediate: %q", ty.Visible())
	}
}

func TestTyper_ReducedMotionBypassesThrottle(t *testing.T) {
	ty := New(1, WithReducedMotion(true)) // 1s interval, irrelevant
	ty.Append("a")
	ty.Append("b")
	ty.Append("c")

	if got := ty.Visible(); got != "abc" {
		t.Errorf("Visible = %q, want %q", got, "abc")
	}
	if ty.Pending() {
		t.Error("reduced motion must not schedule timers")
	}
}

func TestTyper_SpeedValidation(t *testing.T) {
	tests := []struct {
		name  string
		speed int
		want  int
	}{
		{"zero falls back", 0, DefaultSpeed},
		{"negative falls back", -5, DefaultSpeed},
		{"over cap falls back", 1000, DefaultSpeed},
		{"valid kept", 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.speed).Speed(); got != tt.want {
				t.Errorf("Speed() = %d, want %d", got, tt.want)
			}
		})
	}
}
