// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// SESSION PICKER
// =============================================================================

// sessionPicker is the overlay for browsing, filtering and loading saved
// sessions. Typing narrows the list with the fuzzy matcher; Enter loads
// the selection.
type sessionPicker struct {
	theme *styles.Theme

	all      []commands.SessionInfo
	filtered []commands.SessionInfo
	query    string
	selected int

	width  int
	height int
}

// pickerMaxRows bounds the visible list; the selection scrolls within it.
const pickerMaxRows = 8

func newSessionPicker(theme *styles.Theme, sessions []commands.SessionInfo, query string) *sessionPicker {
	p := &sessionPicker{
		theme: theme,
		all:   sessions,
		query: query,
	}
	p.applyFilter()
	return p
}

// SetSessions replaces the underlying list, keeping the current filter.
func (p *sessionPicker) SetSessions(sessions []commands.SessionInfo) {
	p.all = sessions
	p.applyFilter()
}

// SetFilter replaces the filter text.
func (p *sessionPicker) SetFilter(query string) {
	p.query = query
	p.applyFilter()
}

// Filter returns the current filter text.
func (p *sessionPicker) Filter() string {
	return p.query
}

// SetSize records the terminal size for overlay placement.
func (p *sessionPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Type appends typed characters to the filter.
func (p *sessionPicker) Type(s string) {
	p.query += s
	p.applyFilter()
}

// Backspace removes the last filter character.
func (p *sessionPicker) Backspace() {
	if p.query == "" {
		return
	}
	runes := []rune(p.query)
	p.query = string(runes[:len(runes)-1])
	p.applyFilter()
}

// MoveUp moves the selection up, stopping at the top.
func (p *sessionPicker) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves the selection down, stopping at the bottom.
func (p *sessionPicker) MoveDown() {
	if p.selected < len(p.filtered)-1 {
		p.selected++
	}
}

// Selected returns the highlighted session, or nil when the filtered
// list is empty.
func (p *sessionPicker) Selected() *commands.SessionInfo {
	if len(p.filtered) == 0 || p.selected < 0 || p.selected >= len(p.filtered) {
		return nil
	}
	return &p.filtered[p.selected]
}

// applyFilter recomputes the filtered rows. Each session matches on its
// title and preview together, ranked by fuzzy score.
func (p *sessionPicker) applyFilter() {
	if p.query == "" {
		p.filtered = p.all
		p.clampSelection()
		return
	}

	type scored struct {
		info  commands.SessionInfo
		score int
	}
	var rows []scored
	for _, info := range p.all {
		target := info.Title + " " + info.Preview
		if score, ok := components.FuzzyMatch(p.query, target); ok {
			rows = append(rows, scored{info: info, score: score})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].score > rows[j].score
	})

	p.filtered = make([]commands.SessionInfo, len(rows))
	for i, r := range rows {
		p.filtered[i] = r.info
	}
	p.clampSelection()
}

func (p *sessionPicker) clampSelection() {
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the picker as a centered box over the chat.
func (p *sessionPicker) View() string {
	boxWidth := minInt(p.width-8, 72)
	if boxWidth < 36 {
		boxWidth = 36
	}
	inner := boxWidth - 4

	var b strings.Builder

	b.WriteString(p.theme.SessionTitle.Render("Saved sessions"))
	b.WriteString("\n")

	filter := "filter: " + p.query
	if p.query == "" {
		filter = "filter: (type to narrow)"
	}
	b.WriteString(p.theme.SessionMeta.Render(truncateRunes(filter, inner)))
	b.WriteString("\n\n")

	if len(p.filtered) == 0 {
		b.WriteString(p.theme.SessionMeta.Render("no sessions match"))
		b.WriteString("\n")
	} else {
		start, end := p.window()
		for i := start; i < end; i++ {
			b.WriteString(p.renderRow(i, inner))
			b.WriteString("\n")
		}
		if len(p.filtered) > end-start {
			b.WriteString(p.theme.SessionMeta.Render(
				fmt.Sprintf("  %d of %d shown", end-start, len(p.filtered))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(p.theme.ShortcutDesc.Render("enter load · ctrl+d delete · esc close"))

	box := p.theme.SessionList.Width(boxWidth).Render(b.String())

	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// window returns the visible slice bounds, scrolled so the selection
// stays in view.
func (p *sessionPicker) window() (int, int) {
	if len(p.filtered) <= pickerMaxRows {
		return 0, len(p.filtered)
	}
	start := p.selected - pickerMaxRows/2
	if start < 0 {
		start = 0
	}
	end := start + pickerMaxRows
	if end > len(p.filtered) {
		end = len(p.filtered)
		start = end - pickerMaxRows
	}
	return start, end
}

func (p *sessionPicker) renderRow(i, width int) string {
	info := p.filtered[i]

	marker := "  "
	style := p.theme.SessionItem
	if i == p.selected {
		marker = "> "
		style = p.theme.SessionItemSelected
	}

	meta := fmt.Sprintf(" · %s · %s", pluralize(info.MsgCount, "msg", "msgs"), info.UpdatedAt)
	titleRoom := width - len(marker) - runeLen(meta)
	if titleRoom < 8 {
		titleRoom = 8
	}

	line := marker + truncateRunes(info.Title, titleRoom) + meta
	return style.Render(truncateRunes(line, width))
}

// runeLen counts runes; display columns for these strings are close
// enough since metadata is ASCII.
func runeLen(s string) int {
	return len([]rune(s))
}

// =============================================================================
// MODEL INTEGRATION
// =============================================================================

// openPicker opens the session picker, optionally pre-filtered.
func (m Model) openPicker(query string) (tea.Model, tea.Cmd) {
	if m.sessions == nil {
		m.toasts.Error("session storage is not available")
		return m, components.ToastTickCmd()
	}

	infos := sessionInfoList(m.sessions.List())
	if len(infos) == 0 {
		m.toasts.Info("no saved sessions yet; /save stores the current one")
		return m, components.ToastTickCmd()
	}

	m.picker = newSessionPicker(m.theme, infos, query)
	m.picker.SetSize(m.width, m.height)
	return m, nil
}

// handlePickerKey routes keys while the picker is open.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+p":
		m.picker = nil
		return m, nil

	case "ctrl+c":
		m.picker = nil
		return m, nil

	case "up":
		m.picker.MoveUp()
		return m, nil

	case "down":
		m.picker.MoveDown()
		return m, nil

	case "enter":
		sel := m.picker.Selected()
		if sel == nil {
			return m, nil
		}
		id := sel.ID
		m.picker = nil
		return m, commands.HandleLoad(m.cmdCtx, []string{id})

	case "ctrl+d":
		sel := m.picker.Selected()
		if sel == nil {
			return m, nil
		}
		return m, commands.HandleDelete(m.cmdCtx, []string{sel.ID})

	case "backspace":
		m.picker.Backspace()
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		m.picker.Type(string(msg.Runes))
	} else if msg.Type == tea.KeySpace {
		m.picker.Type(" ")
	}
	return m, nil
}
