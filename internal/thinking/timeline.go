// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package thinking tracks the fixed pipeline of progress steps shown while
// the assistant works on a reply.
//
// The timeline is pure state: a fixed ordered list of steps, each moving
// forward only (pending, then active, then done or error). It carries no
// model reasoning content. Rendering lives in the UI layer.
package thinking

import "time"

// =============================================================================
// STEP IDENTIFIERS
// =============================================================================

// StepID names one phase of the pipeline.
type StepID string

const (
	StepUnderstand StepID = "understand"
	StepPlan       StepID = "plan"
	StepRetrieve   StepID = "retrieve"
	StepTool       StepID = "tool"
	StepCompose    StepID = "compose"
	StepFinalize   StepID = "finalize"
)

// Status is the lifecycle state of a step.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// =============================================================================
// STEP
// =============================================================================

// Step is one labeled phase with its status and timing.
type Step struct {
	ID        StepID
	Label     string
	Status    Status
	StartedAt time.Time
	EndedAt   time.Time
	ToolName  string
	Note      string
}

// Duration returns the elapsed time for the step, or zero if it has not
// both started and ended.
func (s Step) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// DefaultSteps returns the fixed ordered pipeline, all pending.
func DefaultSteps() []Step {
	return []Step{
		{ID: StepUnderstand, Label: "Understanding request", Status: StatusPending},
		{ID: StepPlan, Label: "Planning approach", Status: StatusPending},
		{ID: StepRetrieve, Label: "Retrieving context", Status: StatusPending},
		{ID: StepTool, Label: "Running tools", Status: StatusPending},
		{ID: StepCompose, Label: "Composing response", Status: StatusPending},
		{ID: StepFinalize, Label: "Finalizing", Status: StatusPending},
	}
}

// =============================================================================
// TIMELINE
// =============================================================================

// Timeline is the thinking pipeline state. At most one step is active at a
// time; ActiveStep, when set, names that step.
type Timeline struct {
	Visible    bool
	CanCancel  bool
	Steps      []Step
	ActiveStep StepID
}

// NewTimeline creates a hidden timeline with the default pending steps.
func NewTimeline() Timeline {
	return Timeline{
		Steps: DefaultSteps(),
	}
}

// Clone returns a deep copy. Reducers clone before mutating so prior
// states stay untouched.
func (t Timeline) Clone() Timeline {
	steps := make([]Step, len(t.Steps))
	copy(steps, t.Steps)
	t.Steps = steps
	return t
}

// find returns the index of the step with the given id, or -1.
func (t *Timeline) find(id StepID) int {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// Step returns the step with the given id.
func (t *Timeline) Step(id StepID) (Step, bool) {
	i := t.find(id)
	if i < 0 {
		return Step{}, false
	}
	return t.Steps[i], true
}

// Active returns the currently active step, if any.
func (t *Timeline) Active() (Step, bool) {
	if t.ActiveStep == "" {
		return Step{}, false
	}
	i := t.find(t.ActiveStep)
	if i < 0 || t.Steps[i].Status != StatusActive {
		return Step{}, false
	}
	return t.Steps[i], true
}

// StartStep marks the named step active and records its start time. A
// non-empty label or toolName overrides the defaults. Steps move forward
// only: starting a step already done or failed is a no-op. Prior steps are
// not touched; callers complete them first.
func (t *Timeline) StartStep(id StepID, label, toolName string) {
	i := t.find(id)
	if i < 0 {
		return
	}
	step := &t.Steps[i]
	switch step.Status {
	case StatusDone, StatusError:
		return
	case StatusActive:
		// Already running; just reassert the active pointer.
	default:
		step.Status = StatusActive
		step.StartedAt = time.Now()
	}
	if label != "" {
		step.Label = label
	}
	if toolName != "" {
		step.ToolName = toolName
	}
	t.ActiveStep = id
}

// CompleteStep marks the named step done and records its end time.
// Completing a step that was never active still marks it done. Completing
// the step the active pointer names also clears the pointer.
func (t *Timeline) CompleteStep(id StepID) {
	i := t.find(id)
	if i < 0 {
		return
	}
	step := &t.Steps[i]
	if step.Status != StatusDone {
		step.Status = StatusDone
		step.EndedAt = time.Now()
	}
	if t.ActiveStep == id {
		t.ActiveStep = ""
	}
}

// FailStep marks the named step failed, records its end time, and attaches
// the note. Clears the active pointer when it names this step.
func (t *Timeline) FailStep(id StepID, note string) {
	i := t.find(id)
	if i < 0 {
		return
	}
	step := &t.Steps[i]
	step.Status = StatusError
	step.EndedAt = time.Now()
	if note != "" {
		step.Note = note
	}
	if t.ActiveStep == id {
		t.ActiveStep = ""
	}
}

// Reset restores every step to a fresh pending copy and clears the active
// pointer. Visibility flags are left alone; they have their own setters.
func (t *Timeline) Reset() {
	t.Steps = DefaultSteps()
	t.ActiveStep = ""
}

// SetVisible toggles whether the timeline is shown. No step state changes.
func (t *Timeline) SetVisible(v bool) {
	t.Visible = v
}

// SetCanCancel toggles whether the user may cancel. No step state changes.
func (t *Timeline) SetCanCancel(v bool) {
	t.CanCancel = v
}

// Progress returns the fraction of steps done, in [0, 1].
func (t *Timeline) Progress() float64 {
	if len(t.Steps) == 0 {
		return 0
	}
	done := 0
	for i := range t.Steps {
		if t.Steps[i].Status == StatusDone {
			done++
		}
	}
	return float64(done) / float64(len(t.Steps))
}
