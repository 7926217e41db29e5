// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderScreen renders the complete chat screen.
// Layout: header + transcript (viewport) + [thinking panel] + [error banner]
// + [notice] + [completion popup] + input area + status bar. The stack must
// total m.height exactly to prevent overflow.
//
// COUPLING WARNING: the viewport height is pre-calculated in handleResize()
// (model.go) from conservative constants. This function measures the actual
// component heights with lipgloss.Height and forces the transcript block to
// the remainder, so transient rows (banner, notice, popup, a grown input)
// never push the status bar off screen.
func (m Model) renderScreen() string {
	if m.width == 0 || m.height == 0 {
		return "Starting parley..."
	}

	if m.quitting {
		return ""
	}

	// Full-screen overlays replace the chat entirely.
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.picker != nil {
		return m.picker.View()
	}
	if m.showWelcome && len(m.transcript) == 0 {
		return m.welcome.View()
	}

	header := m.header.View()
	input := m.renderInputArea()
	m.syncStatusBar()
	status := m.statusBar.View()

	var thinking string
	if m.state.Thinking.Visible && m.streamActive() {
		thinking = m.thinkPanel.View(m.state.Thinking)
	}

	var banner string
	if m.banner.HasError() {
		banner = m.banner.View()
	}

	var notice string
	if m.notice != "" {
		notice = m.renderNotice()
	}

	var popup string
	if m.showPopup && m.popup.HasCompletions() {
		popup = m.popup.View()
	}

	fixed := measureHeight(header) +
		measureHeight(thinking) +
		measureHeight(banner) +
		measureHeight(notice) +
		measureHeight(popup) +
		measureHeight(input) +
		measureHeight(status)

	available := m.height - fixed
	if available < 1 {
		available = 1
	}

	messages := m.viewport.View()
	if lipgloss.Height(messages) != available {
		// Viewport height drifted from the layout; force the block so the
		// rest of the stack keeps its rows.
		messages = lipgloss.NewStyle().
			Height(available).
			MaxHeight(available).
			Width(m.width).
			Render(messages)
	}

	parts := []string{header, messages}
	if thinking != "" {
		parts = append(parts, thinking)
	}
	if banner != "" {
		parts = append(parts, banner)
	}
	if notice != "" {
		parts = append(parts, notice)
	}
	if popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, input, status)

	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.toasts.HasToasts() {
		overlay := components.RenderToastStack(m.toasts.Toasts(), m.width, m.height)
		return m.overlayToasts(base, overlay)
	}

	return base
}

// measureHeight is lipgloss.Height that treats an absent component as
// zero rows instead of one.
func measureHeight(s string) int {
	if s == "" {
		return 0
	}
	return lipgloss.Height(s)
}

// syncStatusBar pushes render-time state into the status bar component.
func (m Model) syncStatusBar() {
	m.statusBar.SessionTitle = m.sessionTitle
	m.statusBar.MessageCount = len(m.transcript)
	if m.sessionMgr != nil {
		m.statusBar.Dirty = m.sessionMgr.IsDirty()
	}
	m.statusBar.ScrollPercent = m.viewport.ScrollPercent() * 100

	switch {
	case m.banner.HasError():
		m.statusBar.Status = components.StatusError
	case m.state.Streaming.IsStreaming && m.deltaCount == 0:
		m.statusBar.Status = components.StatusThinking
	case m.streamActive():
		m.statusBar.Status = components.StatusStreaming
	default:
		m.statusBar.Status = components.StatusReady
	}
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInputArea renders the separator, the text input and the hint line.
// The separator color tracks the turn state so the input region doubles as
// a subtle status indicator.
func (m Model) renderInputArea() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	sepColor := styles.Overlay
	switch {
	case m.banner.HasError():
		sepColor = styles.Rose
	case m.streamActive():
		sepColor = styles.Purple
	}
	separator := lipgloss.NewStyle().
		Foreground(sepColor).
		Render(strings.Repeat("─", width))

	inputView := m.input.View()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		separator,
		inputView,
		m.renderHintLine(width),
	)
}

// renderHintLine renders the shortcut hint on the left and the character
// count on the right, together never wider than the terminal.
func (m Model) renderHintLine(width int) string {
	var hint string
	switch {
	case m.state.Streaming.IsStreaming:
		hint = "esc cancel · ctrl+t thinking"
	case m.showPopup && m.popup.HasCompletions():
		hint = "tab accept · ↑/↓ choose · esc dismiss"
	default:
		hint = "enter send · ctrl+j newline · f1 help"
	}
	hintView := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(hint)

	countView := m.renderCharCount()

	gap := width - lipgloss.Width(hintView) - lipgloss.Width(countView) - 2
	if gap < 1 {
		return " " + hintView
	}
	return " " + hintView + strings.Repeat(" ", gap) + countView
}

// renderCharCount renders the character counter, colored as the limit
// approaches.
func (m Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	limit := m.input.CharLimit
	if limit <= 0 {
		limit = 1
	}

	var style lipgloss.Style
	percent := float64(count) / float64(limit) * 100
	switch {
	case percent >= 90:
		style = lipgloss.NewStyle().Foreground(styles.Rose)
	case percent >= 75:
		style = lipgloss.NewStyle().Foreground(styles.Amber)
	default:
		style = lipgloss.NewStyle().Foreground(styles.TextMuted)
	}

	return style.Render(fmt.Sprintf("%d / %d", count, limit))
}

// =============================================================================
// NOTICE BLOCK
// =============================================================================

// noticeMaxLines caps how much command output renders inline; anything
// longer is cut with a count of what was hidden.
const noticeMaxLines = 12

// renderNotice renders the last command's output block above the input.
func (m Model) renderNotice() string {
	lines := strings.Split(strings.TrimRight(m.notice, "\n"), "\n")
	if len(lines) > noticeMaxLines {
		hidden := len(lines) - noticeMaxLines
		lines = append(lines[:noticeMaxLines],
			fmt.Sprintf("... %s hidden (esc dismiss)", pluralize(hidden, "line", "lines")))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(styles.Cyan).
		PaddingLeft(1).
		Foreground(styles.TextSecondary).
		Width(m.width - 2).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders the full-screen help. The body comes from the
// command registry; the "keys" topic swaps in the keyboard shortcut table.
func (m Model) renderHelpOverlay() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	var body string
	if strings.EqualFold(m.helpTopic, "keys") {
		body = m.renderKeyHelp()
	} else {
		body = commands.GenerateHelpText(m.registry, m.helpTopic)
	}

	var sb strings.Builder
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render("Press F1 or Esc to close · /help keys for shortcuts"))

	content := sb.String()

	// Cap the box to the terminal; long topics scroll off rather than
	// breaking the layout.
	maxLines := height - 6
	if maxLines < 4 {
		maxLines = 4
	}
	contentLines := strings.Split(content, "\n")
	if len(contentLines) > maxLines {
		contentLines = append(contentLines[:maxLines], "...")
		content = strings.Join(contentLines, "\n")
	}

	boxWidth := 64
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 24 {
		boxWidth = 24
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Foreground(styles.TextPrimary).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderKeyHelp renders the keyboard shortcut table grouped by section.
func (m Model) renderKeyHelp() string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	sectionStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	var sb strings.Builder
	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString(strings.Repeat("─", 30) + "\n\n")

	for _, section := range m.keyMap.HelpSections() {
		sb.WriteString(sectionStyle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", h.Key)),
				descStyle.Render(h.Desc)))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// =============================================================================
// TOAST OVERLAY
// =============================================================================

// overlayToasts layers the toast stack over the base view without
// re-rendering it. Toasts sit bottom-right, above the status bar.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	toastHeight := len(toastLines)

	// Leave the status bar and hint line visible under the stack.
	startRow := m.height - toastHeight - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		toastIdx := i - startRow
		if toastIdx < 0 || toastIdx >= len(toastLines) {
			result[i] = baseLine
			continue
		}

		toastLine := toastLines[toastIdx]
		toastWidth := lipgloss.Width(toastLine)
		if toastWidth == 0 {
			result[i] = baseLine
			continue
		}

		room := m.width - toastWidth - 1
		baseWidth := lipgloss.Width(baseLine)
		if baseWidth < room {
			baseLine += strings.Repeat(" ", room-baseWidth)
		} else if baseWidth > room && room > 0 {
			baseLine = truncateToWidth(baseLine, room)
		}

		result[i] = baseLine + toastLine
	}

	return strings.Join(result, "\n")
}

// truncateToWidth truncates a string to fit within a visible width.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	currentWidth := 0
	var result strings.Builder
	for _, r := range s {
		runeWidth := lipgloss.Width(string(r))
		if currentWidth+runeWidth > width {
			break
		}
		result.WriteRune(r)
		currentWidth += runeWidth
	}
	return result.String()
}
