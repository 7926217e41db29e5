// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// ERROR BANNER
// =============================================================================

// ErrorBanner is a framed error panel shown when a response fails outright.
// Transient problems go through toasts; the banner is for failures that end
// the turn, where the user needs the message and a recovery hint in one place.
type ErrorBanner struct {
	Title   string
	Message string
	Tip     string
	Width   int

	theme *styles.Theme
}

// NewErrorBanner creates an empty banner with the default title.
func NewErrorBanner(theme *styles.Theme) *ErrorBanner {
	return &ErrorBanner{
		Title: "Response failed",
		Width: 80,
		theme: theme,
	}
}

// SetError fills the banner from a failure message and derives a recovery
// tip from its text.
func (e *ErrorBanner) SetError(message string) {
	e.Message = message
	e.Tip = TipForError(message)
}

// Clear empties the banner so View renders nothing.
func (e *ErrorBanner) Clear() {
	e.Message = ""
	e.Tip = ""
}

// HasError reports whether the banner has content to show.
func (e *ErrorBanner) HasError() bool {
	return e.Message != ""
}

// SetWidth updates the render width.
func (e *ErrorBanner) SetWidth(width int) {
	e.Width = width
}

// View renders the banner, or an empty string when there is no error.
func (e *ErrorBanner) View() string {
	if e.Message == "" {
		return ""
	}

	boxWidth := e.Width - 4
	if boxWidth > 72 {
		boxWidth = 72
	}
	if boxWidth < 24 {
		boxWidth = 24
	}
	inner := boxWidth - 4

	parts := []string{
		e.theme.ErrorTitle.Render("! " + e.Title),
		e.theme.ErrorMessage.Render(wordWrap(e.Message, inner)),
	}
	if e.Tip != "" {
		parts = append(parts, "")
		parts = append(parts, e.theme.ErrorTip.Render(wordWrap("tip: "+e.Tip, inner)))
	}

	return e.theme.ErrorBox.Width(boxWidth).Render(strings.Join(parts, "\n"))
}

// =============================================================================
// RECOVERY TIPS
// =============================================================================

// TipForError maps common failure text to a recovery hint. Matching is
// substring-based on purpose: errors arrive through several transports and
// none of them agree on shape. Returns "" when no hint applies.
func TipForError(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "endpoint not configured"):
		return "Set chat.endpoint_url in the config, or switch back with /source simulated."
	case strings.Contains(m, "connection refused"), strings.Contains(m, "no such host"):
		return "Check that the endpoint is reachable and chat.endpoint_url points at it."
	case strings.Contains(m, "deadline exceeded"), strings.Contains(m, "timeout"):
		return "The endpoint took too long to answer. Retry, or raise chat.request_timeout_secs."
	case strings.Contains(m, "status 401"), strings.Contains(m, "status 403"):
		return "The endpoint rejected the request. Check its authentication settings."
	case strings.Contains(m, "status 429"):
		return "The endpoint is rate limiting. Wait a moment before sending again."
	case strings.Contains(m, "status 5"):
		return "The endpoint hit an internal error. Retry, or switch with /source simulated."
	case strings.Contains(m, "partial content received"):
		return "The stream broke mid-response. What arrived is kept; send again to continue."
	}
	return ""
}
