// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thinking

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DURATION FORMATTING
// =============================================================================

// FormatDuration renders a step duration for display: milliseconds when
// under one second, otherwise seconds to one decimal.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// =============================================================================
// PLAIN SUMMARY
// =============================================================================

// summaryIcon is the unstyled marker for a step status. The TUI renders
// richer indicators; this is for logs and the plain REPL.
func summaryIcon(status Status) string {
	switch status {
	case StatusDone:
		return "[ok]"
	case StatusActive:
		return "[..]"
	case StatusError:
		return "[!!]"
	default:
		return "[  ]"
	}
}

// Summary returns a plain-text rendering of the timeline, one step per
// line with status markers and timings.
func (t *Timeline) Summary() string {
	var lines []string
	for i := range t.Steps {
		step := t.Steps[i]

		var timing string
		if d := step.Duration(); d > 0 {
			timing = fmt.Sprintf(" (%s)", FormatDuration(d))
		}

		label := step.Label
		if step.ToolName != "" {
			label = fmt.Sprintf("%s: %s", step.Label, step.ToolName)
		}

		line := fmt.Sprintf("%s %s%s", summaryIcon(step.Status), label, timing)
		if step.Status == StatusError && step.Note != "" {
			line += " - " + step.Note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
