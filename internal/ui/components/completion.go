// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// COMPLETION POPUP
// =============================================================================

// Column layout inside the popup: a 2-cell selection gutter, a fixed-width
// value column, and the description taking the rest.
const (
	popupValueWidth  = 20
	popupGutterWidth = 2
	popupChrome      = popupGutterWidth + popupValueWidth + 2
)

// CompletionPopup lists completion candidates above the input: slash
// commands while a name is being typed, then argument values (session IDs,
// config keys, export formats) once the name is complete.
type CompletionPopup struct {
	completions []commands.Completion
	selected    int
	maxVisible  int
	showPreview bool
	width       int
	theme       *styles.Theme
}

// NewCompletionPopup creates an empty popup.
func NewCompletionPopup(theme *styles.Theme) *CompletionPopup {
	return &CompletionPopup{
		maxVisible:  8,
		showPreview: true,
		width:       50,
		theme:       theme,
	}
}

// SetCompletions replaces the candidate list and resets the selection.
func (c *CompletionPopup) SetCompletions(completions []commands.Completion) {
	c.completions = completions
	c.selected = 0
}

// GetCompletions returns the current candidates.
func (c *CompletionPopup) GetCompletions() []commands.Completion {
	return c.completions
}

// SetSelected moves the selection, ignoring out-of-range indices.
func (c *CompletionPopup) SetSelected(index int) {
	if index >= 0 && index < len(c.completions) {
		c.selected = index
	}
}

// GetSelected returns the selected index.
func (c *CompletionPopup) GetSelected() int {
	return c.selected
}

// Next moves the selection down, wrapping at the end.
func (c *CompletionPopup) Next() {
	if n := len(c.completions); n > 0 {
		c.selected = (c.selected + 1) % n
	}
}

// Prev moves the selection up, wrapping at the start.
func (c *CompletionPopup) Prev() {
	if n := len(c.completions); n > 0 {
		c.selected = (c.selected - 1 + n) % n
	}
}

// GetSelectedCompletion returns the selected candidate, nil when empty.
func (c *CompletionPopup) GetSelectedCompletion() *commands.Completion {
	if c.selected < 0 || c.selected >= len(c.completions) {
		return nil
	}
	return &c.completions[c.selected]
}

// HasCompletions reports whether anything is listed.
func (c *CompletionPopup) HasCompletions() bool {
	return len(c.completions) > 0
}

// Clear empties the popup.
func (c *CompletionPopup) Clear() {
	c.completions = nil
	c.selected = 0
}

// SetWidth sets the popup width in cells.
func (c *CompletionPopup) SetWidth(width int) {
	c.width = width
}

// SetMaxVisible caps how many rows render before the list scrolls.
func (c *CompletionPopup) SetMaxVisible(max int) {
	c.maxVisible = max
}

// SetShowPreview toggles the full-description pane under the list.
func (c *CompletionPopup) SetShowPreview(show bool) {
	c.showPreview = show
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the bordered popup: the visible window of rows, plus the
// preview pane when the selection's description did not fit its row.
func (c *CompletionPopup) View() string {
	if len(c.completions) == 0 {
		return ""
	}

	start, end := c.window()
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, c.row(c.completions[i], i == c.selected))
	}
	content := strings.Join(rows, "\n")

	// Session previews and config descriptions rarely fit in the row,
	// so the pane below the list shows the selection's full description.
	if c.showPreview {
		if preview := c.preview(); preview != "" {
			divider := lipgloss.NewStyle().
				Foreground(styles.Overlay).
				Render(strings.Repeat("-", c.width-2))
			content += "\n" + divider + "\n" + preview
		}
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Cyan).
		Padding(0, 1).
		Width(c.width).
		MaxWidth(c.width).
		Render(content)
}

// window returns the visible [start, end) slice bounds, keeping the
// selection roughly centered once the list outgrows maxVisible.
func (c *CompletionPopup) window() (int, int) {
	n := len(c.completions)
	if n <= c.maxVisible {
		return 0, n
	}

	start := c.selected - c.maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + c.maxVisible
	if end > n {
		end = n
		start = end - c.maxVisible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// row renders one candidate line: gutter, value column, description.
func (c *CompletionPopup) row(comp commands.Completion, selected bool) string {
	gutter := " "
	valueStyle := lipgloss.NewStyle().
		Width(popupValueWidth).
		Foreground(styles.TextPrimary)
	descStyle := lipgloss.NewStyle().
		Width(c.width - popupChrome - 2).
		Foreground(styles.TextSecondary)

	if selected {
		gutter = ">"
		valueStyle = valueStyle.
			Background(styles.Cyan).
			Foreground(styles.Surface).
			Bold(true)
		descStyle = descStyle.Foreground(styles.TextPrimary)
	}

	value := truncateCell(comp.Label(), popupValueWidth)
	desc := truncateCell(comp.Description, c.width-popupChrome-2)

	gutterStyle := lipgloss.NewStyle().
		Width(popupGutterWidth).
		Foreground(styles.Cyan)

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		gutterStyle.Render(gutter),
		valueStyle.Render(value),
		descStyle.Render(desc),
	)
}

// preview returns the selection's full description when the row had to
// truncate it, "" otherwise.
func (c *CompletionPopup) preview() string {
	sel := c.GetSelectedCompletion()
	if sel == nil || sel.Description == "" {
		return ""
	}
	if len([]rune(sel.Description)) <= c.width-popupChrome-2 {
		return ""
	}

	return lipgloss.NewStyle().
		Width(c.width - 4).
		Foreground(styles.TextSecondary).
		Italic(true).
		Render(sel.Description)
}

// truncateCell fits s into width runes, ellipsized when cut.
func truncateCell(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// =============================================================================
// COMPACT VARIANTS
// =============================================================================

// ViewCompact renders a one-line hint for layouts too short for the popup:
// the completion count, or the exact value when only one remains.
func (c *CompletionPopup) ViewCompact() string {
	if len(c.completions) == 0 {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	if len(c.completions) == 1 {
		return style.Render("Tab: complete \"" + c.completions[0].Label() + "\"")
	}
	return style.Render("Tab: " + toStr(len(c.completions)) + " completions")
}

// ViewInline renders the leading candidates on one line under the input,
// with an overflow count for the rest.
func (c *CompletionPopup) ViewInline() string {
	if len(c.completions) == 0 {
		return ""
	}

	shown := 3
	if len(c.completions) < shown {
		shown = len(c.completions)
	}

	parts := make([]string, 0, shown+1)
	for i := 0; i < shown; i++ {
		style := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		if i == c.selected {
			style = style.Foreground(styles.Cyan).Bold(true)
		}
		parts = append(parts, style.Render(c.completions[i].Label()))
	}

	if rest := len(c.completions) - shown; rest > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("..."+toStr(rest)+" more"))
	}

	return strings.Join(parts, " | ")
}
