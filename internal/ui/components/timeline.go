// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/thinking"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// THINKING PANEL - Step-by-step timeline shown while a reply is produced
// =============================================================================

// ThinkingPanel renders a thinking.Timeline as a bordered panel with one
// line per step. The panel itself is stateless with respect to the
// timeline; it only keeps presentation settings and the current spinner
// frame, which the chat model advances on its animation tick.
type ThinkingPanel struct {
	Width         int
	ShowDurations bool
	ReducedMotion bool

	frame   int
	spinner styles.SpinnerConfig
	theme   *styles.Theme
}

// NewThinkingPanel creates a thinking panel with default settings.
func NewThinkingPanel(theme *styles.Theme) *ThinkingPanel {
	return &ThinkingPanel{
		Width:         80,
		ShowDurations: true,
		spinner:       styles.SpinnerFor(false),
		theme:         theme,
	}
}

// SetWidth updates the available width.
func (p *ThinkingPanel) SetWidth(width int) {
	p.Width = width
}

// SetReducedMotion swaps the animated spinner for a static glyph.
// ACCESSIBILITY: honors the user's reduced-motion preference.
func (p *ThinkingPanel) SetReducedMotion(reduced bool) {
	p.ReducedMotion = reduced
	p.spinner = styles.SpinnerFor(reduced)
}

// Advance moves the spinner animation one frame forward.
func (p *ThinkingPanel) Advance() {
	p.frame++
}

// FrameInterval returns how often the panel wants to be redrawn while a
// step is active. Static spinners never need animation ticks.
func (p *ThinkingPanel) FrameInterval() time.Duration {
	return p.spinner.Duration()
}

// View renders the full panel. Returns "" when the timeline is hidden.
func (p *ThinkingPanel) View(tl thinking.Timeline) string {
	if !tl.Visible {
		return ""
	}
	if p.Width < 40 {
		return p.ViewCompact(tl)
	}

	var b strings.Builder

	// Header: title, progress bar, percentage
	b.WriteString(p.renderHeader(tl))
	b.WriteString("\n")

	// One line per step, connected with tree characters
	for i, step := range tl.Steps {
		isLast := i == len(tl.Steps)-1
		b.WriteString(p.renderStep(step, isLast))
		if !isLast {
			b.WriteString("\n")
		}
	}

	// Footer: cancel hint once the grace period has passed
	if tl.CanCancel {
		hint := p.theme.ShortcutKey.Render("Esc") +
			p.theme.ShortcutDesc.Render(" cancel")
		b.WriteString("\n")
		b.WriteString(hint)
	}

	panelWidth := p.Width - 4
	if panelWidth > 64 {
		panelWidth = 64
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.borderColor(tl)).
		Padding(0, 1).
		Width(panelWidth).
		Render(b.String())
}

// ViewCompact renders a single-line summary for narrow terminals or for
// when the full panel is collapsed: spinner, active label, progress.
func (p *ThinkingPanel) ViewCompact(tl thinking.Timeline) string {
	if !tl.Visible {
		return ""
	}

	var parts []string

	if active, ok := tl.Active(); ok {
		parts = append(parts, p.theme.Spinner.Render(p.spinner.Frame(p.frame)))
		label := active.Label
		if active.ToolName != "" {
			label += " (" + active.ToolName + ")"
		}
		parts = append(parts, p.theme.ThinkingText.Render(label))
	} else {
		parts = append(parts, p.theme.ThinkingText.Render("Thinking"))
	}

	parts = append(parts, p.theme.ThinkingTime.Render(fmtPercent(tl.Progress()*100)))

	if tl.CanCancel {
		parts = append(parts, p.theme.ShortcutDesc.Render("Esc to cancel"))
	}

	return strings.Join(parts, " ")
}

// renderHeader renders the panel title line with the overall progress bar.
func (p *ThinkingPanel) renderHeader(tl thinking.Timeline) string {
	title := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Render("Thinking")

	percent := tl.Progress() * 100
	bar := styles.RenderProgressBar(16, percent)
	pct := p.theme.ThinkingTime.Render(fmtPercent(percent))

	return title + "  " + bar + " " + pct
}

// renderStep renders one timeline step with its tree connector, status
// icon, label, and optional duration or failure note.
func (p *ThinkingPanel) renderStep(step thinking.Step, isLast bool) string {
	connector := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(styles.RenderTreeLine(isLast))

	icon, style := p.stepIcon(step.Status)

	label := step.Label
	if step.ToolName != "" {
		label += " (" + step.ToolName + ")"
	}

	line := connector + style.Render(icon) + " " + p.labelStyle(step.Status).Render(label)

	if p.ShowDurations {
		if suffix := p.stepTiming(step); suffix != "" {
			line += " " + p.theme.ThinkingTime.Render(suffix)
		}
	}

	// Failed steps carry their note on a continuation line
	if step.Status == thinking.StatusError && step.Note != "" {
		indent := "    "
		if !isLast {
			indent = lipgloss.NewStyle().Foreground(styles.Overlay).Render(styles.TreeChars.Pipe) + "   "
		}
		line += "\n" + indent + p.theme.ThinkingDetail.Render(step.Note)
	}

	return line
}

// stepIcon returns the status glyph and its style.
// ACCESSIBILITY: distinct shapes alongside colors for colorblind users.
func (p *ThinkingPanel) stepIcon(status thinking.Status) (string, lipgloss.Style) {
	switch status {
	case thinking.StatusDone:
		return styles.StatusIndicators.Success, p.theme.ThinkingDoneSt
	case thinking.StatusActive:
		return p.spinner.Frame(p.frame), p.theme.Spinner
	case thinking.StatusError:
		return styles.StatusIndicators.Error, p.theme.ThinkingFailSt
	default:
		return styles.StatusIndicators.Pending, p.theme.ThinkingTime
	}
}

// labelStyle returns the label style for a step status.
func (p *ThinkingPanel) labelStyle(status thinking.Status) lipgloss.Style {
	switch status {
	case thinking.StatusActive:
		return p.theme.ThinkingStep
	case thinking.StatusDone:
		return p.theme.ThinkingText
	case thinking.StatusError:
		return p.theme.ThinkingFailSt
	default:
		return p.theme.ThinkingTime
	}
}

// stepTiming returns the duration suffix for a step: final duration for
// finished steps, live elapsed time for the active one.
func (p *ThinkingPanel) stepTiming(step thinking.Step) string {
	switch step.Status {
	case thinking.StatusDone, thinking.StatusError:
		if d := step.Duration(); d > 0 {
			return thinking.FormatDuration(d)
		}
	case thinking.StatusActive:
		if !step.StartedAt.IsZero() {
			return thinking.FormatDuration(time.Since(step.StartedAt))
		}
	}
	return ""
}

// borderColor picks the panel border color from the timeline state:
// rose once a step failed, emerald when everything is done, purple
// while work is in flight.
func (p *ThinkingPanel) borderColor(tl thinking.Timeline) lipgloss.AdaptiveColor {
	done := 0
	for _, step := range tl.Steps {
		switch step.Status {
		case thinking.StatusError:
			return styles.Rose
		case thinking.StatusDone:
			done++
		}
	}
	if len(tl.Steps) > 0 && done == len(tl.Steps) {
		return styles.Emerald
	}
	return styles.Purple
}
