// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/ui/components"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The picker owns the keyboard while open.
	if m.picker != nil {
		return m.handlePickerKey(msg)
	}

	// Ctrl+C cancels an in-flight reply first; pressed while idle it
	// quits.
	if key.Matches(msg, m.keyMap.Quit) {
		if m.state.Streaming.IsStreaming {
			return m.cancelStream()
		}
		m.quitting = true
		return m, tea.Quit
	}

	// The help screen swallows its dismissal keystroke.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.showWelcome {
		m.showWelcome = false
		// Fall through so the first keystroke also reaches the input.
	}

	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		return m.handleEscape()

	case key.Matches(msg, m.keyMap.ToggleHelp):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleThink):
		m.cfg.Thinking.Visible = !m.cfg.Thinking.Visible
		m.state = core.Reduce(m.state, core.ShowThinking{Visible: m.cfg.Thinking.Visible})
		if m.cfg.Thinking.Visible {
			m.toasts.Info("thinking panel on")
		} else {
			m.toasts.Info("thinking panel off")
		}
		return m, components.ToastTickCmd()

	case key.Matches(msg, m.keyMap.SaveSession):
		return m, func() tea.Msg { return commands.SaveConversationMsg{} }

	case key.Matches(msg, m.keyMap.OpenPicker):
		return m.openPicker("")

	case key.Matches(msg, m.keyMap.CopyLast):
		return m, func() tea.Msg { return commands.CopyToClipboardMsg{} }

	case key.Matches(msg, m.keyMap.QuickExport):
		return m, func() tea.Msg { return commands.ExportConversationMsg{Format: "markdown"} }

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.GotoTop):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.GotoBottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	// Completion popup interaction.
	if m.showPopup {
		switch {
		case key.Matches(msg, m.keyMap.AcceptCompletion):
			m.acceptCompletion()
			return m, nil
		case key.Matches(msg, m.keyMap.NextCompletion):
			m.popup.Next()
			return m, nil
		case key.Matches(msg, m.keyMap.PrevCompletion):
			m.popup.Prev()
			return m, nil
		}
	} else if key.Matches(msg, m.keyMap.AcceptCompletion) && strings.HasPrefix(m.input.Value(), "/") {
		m.refreshCompletions()
		return m, nil
	}

	if key.Matches(msg, m.keyMap.Submit) {
		return m.handleSubmit()
	}

	// Everything else edits the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshCompletions()
	m.adjustInputHeight()
	return m, cmd
}

// handleEscape resolves Esc by priority: close the popup, cancel the
// stream, clear the notice, then clear the error banner.
func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.showPopup {
		m.closePopup()
		return m, nil
	}
	if m.state.Streaming.IsStreaming {
		return m.cancelStream()
	}
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}
	if m.banner.HasError() {
		m.banner.Clear()
		m.failedID = ""
		m.updateViewport()
		return m, nil
	}
	return m, nil
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if m.state.Streaming.IsStreaming {
		m.toasts.Warning("a reply is still streaming; press esc to cancel it")
		return m, components.ToastTickCmd()
	}

	// A new turn clears the previous command output and any error state.
	m.notice = ""
	m.banner.Clear()

	result := m.parser.Parse(text)
	if result.IsCommand {
		m.input.Reset()
		m.closePopup()
		m.adjustInputHeight()

		if result.Command == nil {
			m.toasts.Error("unknown command: " + result.CommandName + " (try /help)")
			return m, components.ToastTickCmd()
		}
		m.cmdCtx.RecordActivity()
		return m, result.Command.Handler(m.cmdCtx, result.Args)
	}

	m.input.Reset()
	m.closePopup()
	m.adjustInputHeight()
	return m.startTurn(text)
}

// =============================================================================
// COMPLETION POPUP
// =============================================================================

// refreshCompletions recomputes the popup for the current input. Only
// single-line inputs starting with "/" complete.
func (m *Model) refreshCompletions() {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") || strings.Contains(value, "\n") {
		m.closePopup()
		return
	}

	comps := m.completer.Complete(value, len(value))
	if len(comps) == 0 {
		m.closePopup()
		return
	}
	m.popup.SetCompletions(comps)
	m.showPopup = true
}

// acceptCompletion replaces the token under the cursor with the selected
// completion.
func (m *Model) acceptCompletion() {
	comp := m.popup.GetSelectedCompletion()
	if comp == nil {
		return
	}

	value := m.input.Value()
	var next string
	if idx := strings.LastIndex(value, " "); idx >= 0 {
		// Completing an argument: keep the command and prior args.
		next = value[:idx+1] + comp.Value
	} else {
		// Completing the command name itself.
		next = comp.Value + " "
	}

	m.input.SetValue(next)
	m.input.CursorEnd()
	m.refreshCompletions()
}

func (m *Model) closePopup() {
	m.showPopup = false
	m.popup.Clear()
}

// adjustInputHeight grows the input with its explicit newlines, up to the
// textarea maximum. The rendered view is clipped to the current height, so
// the line count has to come from the value itself.
func (m *Model) adjustInputHeight() {
	lines := strings.Count(m.input.Value(), "\n") + 1
	if lines > m.input.MaxHeight {
		lines = m.input.MaxHeight
	}
	if lines < 1 {
		lines = 1
	}
	if m.input.Height() != lines {
		m.input.SetHeight(lines)
	}
}
