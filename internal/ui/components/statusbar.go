// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusConnecting
	StatusThinking
	StatusStreaming
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusConnecting:
		return "Connecting..."
	case StatusThinking:
		return "Thinking..."
	case StatusStreaming:
		return "Streaming..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusConnecting, StatusThinking:
		return styles.StatusIndicators.Pending
	case StatusStreaming:
		return styles.StatusIndicators.Active
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: session state on the left, typing
// and scroll info in the center, status and shortcuts on the right.
type StatusBar struct {
	Source        string  // "simulated" or "network"
	SessionTitle  string  // Current session title
	MessageCount  int     // Messages in the transcript
	TypingSpeed   int     // Characters per second for the reveal
	ReducedMotion bool    // Typing effect disabled
	Dirty         bool    // Unsaved changes present
	LastSavedAt   time.Time
	ScrollPercent float64 // Viewport position, 0-100
	Status        Status
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Source:        "simulated",
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		ScrollPercent: 100,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetSaved records a completed save and clears the dirty marker.
func (s *StatusBar) SetSaved(at time.Time) {
	s.Dirty = false
	s.LastSavedAt = at
}

// View renders the status bar, choosing a layout for the width.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [S] 12 msgs * [OK]
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	// Source indicator, first letter only
	badge := "S"
	if s.Source == "network" {
		badge = "N"
	}
	parts = append(parts, s.sourceStyle().Render("["+badge+"]"))

	countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	parts = append(parts, countStyle.Render(toStr(s.MessageCount)+" msgs"))

	if s.Dirty {
		parts = append(parts, s.theme.StatusDirty.Render("*"))
	}

	parts = append(parts, s.statusStyle().Render(s.Status.Icon()))

	return s.theme.StatusBar.
		Width(s.Width).
		Render(strings.Join(parts, " "))
}

// viewMedium renders a medium-width status bar.
// Format: SIM | Session title | 12 msgs | unsaved | Ready
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	parts = append(parts, s.renderSourceBadge())

	if s.SessionTitle != "" {
		title := s.SessionTitle
		// UNICODE: rune-based truncation for multibyte titles
		titleRunes := []rune(title)
		if len(titleRunes) > 24 {
			title = string(titleRunes[:21]) + "..."
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(title))
	}

	countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	parts = append(parts, countStyle.Render(fmtNumber(s.MessageCount)+" msgs"))

	parts = append(parts, s.renderSaveState())
	parts = append(parts, s.statusStyle().Render(s.Status.String()))

	return s.theme.StatusBar.
		Width(s.Width).
		Render(strings.Join(parts, separator))
}

// viewWide renders the full status bar for wide terminals.
// Format: SIM | Session title | 12 msgs | 30 cps | saved 14:02    85%    Ready  ^T thinking ^C quit
func (s *StatusBar) viewWide() string {
	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	// Left section: source, title, counts, typing speed, save state
	leftParts := []string{s.renderSourceBadge()}

	if s.SessionTitle != "" {
		leftParts = append(leftParts, lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(s.SessionTitle))
	}

	countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	leftParts = append(leftParts, countStyle.Render(fmtNumber(s.MessageCount)+" msgs"))
	leftParts = append(leftParts, countStyle.Render(s.renderTypingSpeed()))
	leftParts = append(leftParts, s.renderSaveState())

	leftSection := strings.Join(leftParts, leftSep)

	// Center section: scroll position
	centerSection := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render(fmtPercent(s.ScrollPercent))

	// Right section: status and shortcuts
	rightParts := []string{s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String())}
	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}
	rightSection := strings.Join(rightParts, "  ")

	// Distribute the remaining width between the sections
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4 // Account for padding
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return s.theme.StatusBar.
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderSourceBadge renders the stream source indicator.
func (s *StatusBar) renderSourceBadge() string {
	label := "SIM"
	if s.Source == "network" {
		label = "NET"
	}
	return s.sourceStyle().Render(label)
}

// renderTypingSpeed renders the reveal speed, or "instant" when the
// typing effect is off.
func (s *StatusBar) renderTypingSpeed() string {
	if s.ReducedMotion {
		return "instant"
	}
	return toStr(s.TypingSpeed) + " cps"
}

// renderSaveState renders the autosave indicator.
// ACCESSIBILITY: shape indicators alongside color.
func (s *StatusBar) renderSaveState() string {
	if s.Dirty {
		return s.theme.StatusDirty.Render("* unsaved")
	}
	if !s.LastSavedAt.IsZero() {
		return s.theme.StatusSaved.Render(styles.StatusIndicators.Success + " saved " + fmtClock(s.LastSavedAt))
	}
	return s.theme.StatusSaved.Render("saved")
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^T") + s.theme.ShortcutDesc.Render("thinking"),
	}
	if s.Status == StatusStreaming || s.Status == StatusThinking {
		shortcuts = append(shortcuts,
			s.theme.ShortcutKey.Render("Esc")+s.theme.ShortcutDesc.Render("cancel"))
	} else {
		shortcuts = append(shortcuts,
			s.theme.ShortcutKey.Render("^E")+s.theme.ShortcutDesc.Render("export"))
	}
	shortcuts = append(shortcuts,
		s.theme.ShortcutKey.Render("^C")+s.theme.ShortcutDesc.Render("quit"))

	return strings.Join(shortcuts, " ")
}

// sourceStyle returns the style for the stream source badge.
func (s *StatusBar) sourceStyle() lipgloss.Style {
	if s.Source == "network" {
		return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
}

// statusStyle returns the style for the current status.
// ACCESSIBILITY: Uses high contrast colors with bold for colorblind users
func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusConnecting, StatusThinking, StatusStreaming:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
