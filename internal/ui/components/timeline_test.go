// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/parley/internal/thinking"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// THINKING PANEL TESTS
// =============================================================================

func TestNewThinkingPanel(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	if p.Width != 80 {
		t.Errorf("NewThinkingPanel() Width = %d, want 80", p.Width)
	}

	if !p.ShowDurations {
		t.Error("NewThinkingPanel() should show durations by default")
	}

	if p.ReducedMotion {
		t.Error("NewThinkingPanel() should not start in reduced motion")
	}
}

func TestThinkingPanel_HiddenTimeline(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())
	tl := thinking.NewTimeline() // Hidden by default

	if got := p.View(tl); got != "" {
		t.Errorf("View() of hidden timeline = %q, want empty", got)
	}

	if got := p.ViewCompact(tl); got != "" {
		t.Errorf("ViewCompact() of hidden timeline = %q, want empty", got)
	}
}

func TestThinkingPanel_ViewShowsSteps(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	tl := thinking.NewTimeline()
	tl.SetVisible(true)
	tl.StartStep(thinking.StepUnderstand, "", "")

	view := p.View(tl)

	if !strings.Contains(view, "Thinking") {
		t.Error("View() should contain the panel title")
	}

	if !strings.Contains(view, "Understanding request") {
		t.Error("View() should contain the step label")
	}

	if !strings.Contains(view, "Finalizing") {
		t.Error("View() should list pending steps too")
	}
}

func TestThinkingPanel_ToolNameInLabel(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	tl := thinking.NewTimeline()
	tl.SetVisible(true)
	tl.StartStep(thinking.StepTool, "", "calculator")

	view := p.View(tl)

	if !strings.Contains(view, "calculator") {
		t.Error("View() should show the running tool name")
	}
}

func TestThinkingPanel_FailedStepNote(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	tl := thinking.NewTimeline()
	tl.SetVisible(true)
	tl.StartStep(thinking.StepRetrieve, "", "")
	tl.FailStep(thinking.StepRetrieve, "connection refused")

	view := p.View(tl)

	if !strings.Contains(view, "connection refused") {
		t.Error("View() should carry the failure note")
	}
}

func TestThinkingPanel_CancelHint(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	tl := thinking.NewTimeline()
	tl.SetVisible(true)
	tl.StartStep(thinking.StepCompose, "", "")

	// Before the grace period: no hint
	if strings.Contains(p.View(tl), "cancel") {
		t.Error("View() should not show the cancel hint before it is allowed")
	}

	tl.SetCanCancel(true)
	if !strings.Contains(p.View(tl), "cancel") {
		t.Error("View() should show the cancel hint once allowed")
	}
}

func TestThinkingPanel_NarrowFallsBackToCompact(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())
	p.SetWidth(30)

	tl := thinking.NewTimeline()
	tl.SetVisible(true)
	tl.StartStep(thinking.StepPlan, "", "")

	view := p.View(tl)

	// Compact view is a single line
	if strings.Contains(view, "\n") {
		t.Errorf("narrow View() should be single-line, got %q", view)
	}

	if !strings.Contains(view, "Planning approach") {
		t.Error("compact view should show the active step label")
	}

	if !strings.Contains(view, "%") {
		t.Error("compact view should show progress")
	}
}

func TestThinkingPanel_CompactNoActiveStep(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	tl := thinking.NewTimeline()
	tl.SetVisible(true)

	view := p.ViewCompact(tl)

	if !strings.Contains(view, "Thinking") {
		t.Error("compact view without an active step should show the generic label")
	}
}

func TestThinkingPanel_ReducedMotion(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	animated := p.FrameInterval()
	p.SetReducedMotion(true)
	static := p.FrameInterval()

	if !p.ReducedMotion {
		t.Error("SetReducedMotion(true) should set the flag")
	}

	// The static spinner redraws far less often
	if static <= animated {
		t.Errorf("reduced-motion interval %v should exceed animated %v", static, animated)
	}
}

func TestThinkingPanel_Advance(t *testing.T) {
	p := NewThinkingPanel(styles.NewTheme())

	before := p.frame
	p.Advance()
	p.Advance()

	if p.frame != before+2 {
		t.Errorf("Advance() twice moved frame from %d to %d", before, p.frame)
	}
}
