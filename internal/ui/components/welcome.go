// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome is the first screen shown before any message is sent: logo,
// version, a short system summary, and quick-start hints.
type Welcome struct {
	version     string
	source      string // "simulated" or "network"
	typingDesc  string // e.g. "30 cps" or "instant"
	storageName string // e.g. "file" or "sqlite"

	width  int
	height int
	theme  *styles.Theme
}

// NewWelcome creates a welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:     "dev",
		source:      "simulated",
		typingDesc:  "30 cps",
		storageName: "file",
		width:       80,
		height:      24,
		theme:       theme,
	}
}

// SetVersion sets the displayed version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetSource sets the displayed stream source.
func (w *Welcome) SetSource(source string) {
	w.source = source
}

// SetTypingDesc sets the displayed typing speed description.
func (w *Welcome) SetTypingDesc(desc string) {
	w.typingDesc = desc
}

// SetStorageName sets the displayed storage backend name.
func (w *Welcome) SetStorageName(name string) {
	w.storageName = name
}

// SetSize updates the layout dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen, centered in the available space.
// Responsive: collapses sections on short terminals.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 58
	if width < 66 {
		boxWidth = width - 8
	}
	if boxWidth < 36 {
		boxWidth = 36
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	horizontalPadding := 4
	verticalPadding := 1
	if width < 66 {
		horizontalPadding = 2
	}

	boxOverhead := 2 + 2*verticalPadding
	availableContentLines := height - boxOverhead

	// Logo(6) + version(1) + sysinfo(3) + quickstart(5) + presskey(1)
	// plus blank separators. Collapse in stages when the terminal is short.
	var content string
	switch {
	case availableContentLines >= 20:
		content = w.renderLogo()
		content += "\n\n" + w.renderVersion()
		content += "\n\n" + w.renderSystemInfo()
		content += "\n\n" + w.renderQuickStart()
		content += "\n\n" + w.renderPressKey()
	case availableContentLines >= 14:
		content = w.renderLogo()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderSystemInfo()
		content += "\n" + w.renderPressKey()
	case availableContentLines >= 9:
		content = w.renderLogoCompact()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderSystemInfoCompact()
		content += "\n" + w.renderPressKey()
	default:
		content = w.renderLogoCompact()
		content += "\n" + w.renderPressKey()
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(verticalPadding, horizontalPadding).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	boxHeight := lipgloss.Height(box)

	// Align top rather than clipping the logo when the box overflows
	if boxHeight >= height {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, box)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo (6 lines).
func (w Welcome) renderLogo() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	// Full ASCII art is ~32 chars wide
	if w.width >= 48 {
		logo := `                 _
  _ __   __ _ _ __| | ___ _   _
 | '_ \ / _` + "`" + ` | '__| |/ _ \ | | |
 | |_) | (_| | |  | |  __/ |_| |
 | .__/ \__,_|_|  |_|\___|\__, |
 |_|                      |___/ `
		return logoStyle.Render(logo)
	}

	return w.renderLogoCompact()
}

// renderLogoCompact renders a one-line logo. On true color terminals
// the brand gets a cyan-to-purple gradient.
func (w Welcome) renderLogoCompact() string {
	if w.theme != nil && w.theme.HasTrueColor {
		return GradientTitle("parley", lipgloss.Color("#22D3EE"), lipgloss.Color("#A78BFA"))
	}
	return lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Render("parley")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Terminal chat v" + w.version)
}

// renderSystemInfo renders source, typing, and storage info (3 lines).
func (w Welcome) renderSystemInfo() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(9)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	lines := []string{
		labelStyle.Render("Source: ") + w.renderSourceIndicator(),
		labelStyle.Render("Typing: ") + valueStyle.Render(w.typingDesc),
		labelStyle.Render("Storage:") + valueStyle.Render(" "+w.storageName),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderSystemInfoCompact renders a single-line system info.
func (w Welcome) renderSystemInfoCompact() string {
	return w.renderSourceIndicator() + lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render(" | "+w.typingDesc)
}

// renderSourceIndicator renders the source with its badge color.
func (w Welcome) renderSourceIndicator() string {
	if w.source == "network" {
		return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render("network")
	}
	return lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Render("simulated")
}

// renderQuickStart renders the quick start tips.
func (w Welcome) renderQuickStart() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Bold(true)

	bulletStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	tipStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	tips := []string{
		bulletStyle.Render("-") + tipStyle.Render(" Type a message and press Enter"),
		bulletStyle.Render("-") + tipStyle.Render(" Use /help to see all commands"),
		bulletStyle.Render("-") + tipStyle.Render(" Press Ctrl+T to toggle the thinking panel"),
		bulletStyle.Render("-") + tipStyle.Render(" Press Esc to cancel a response"),
	}

	return titleStyle.Render("Quick Start:") + "\n" +
		lipgloss.JoinVertical(lipgloss.Left, tips...)
}

// renderPressKey renders the "press any key" prompt.
func (w Welcome) renderPressKey() string {
	return lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("Press any key to start chatting...")
}

// =============================================================================
// KEYBOARD SHORTCUT HELP
// =============================================================================

// KeyboardShortcuts returns a formatted list of keyboard shortcuts for
// the help overlay.
func KeyboardShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send message"},
		{"Esc", "Cancel response / dismiss"},
		{"Ctrl+T", "Toggle thinking panel"},
		{"Ctrl+E", "Export session"},
		{"Ctrl+S", "Save session"},
		{"Ctrl+L", "Clear conversation"},
		{"Up/Down", "Scroll messages"},
		{"PgUp/PgDn", "Page scroll"},
		{"Tab", "Complete slash command"},
		{"Ctrl+C", "Quit"},
	}

	lines := make([]string, len(shortcuts))
	for i, s := range shortcuts {
		lines[i] = keyStyle.Render(s.key) + descStyle.Render(s.desc)
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	return titleStyle.Render("Keyboard Shortcuts") + "\n" +
		lipgloss.JoinVertical(lipgloss.Left, lines...)
}
