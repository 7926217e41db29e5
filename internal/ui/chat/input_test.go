// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/commands"
)

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmitEmptyInputIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = keyPress(t, m, tea.KeyEnter)

	if m.state.Streaming.IsStreaming {
		t.Error("An empty submit must not start a turn")
	}
	if len(m.transcript) != 0 {
		t.Errorf("Expected an empty transcript, got %d messages", len(m.transcript))
	}
	if m.toasts.HasToasts() {
		t.Error("An empty submit should be silent")
	}
}

func TestSubmitChatTextStartsTurn(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "hello there")
	m, _ = keyPress(t, m, tea.KeyEnter)

	if !m.state.Streaming.IsStreaming {
		t.Error("Expected a streaming turn after submit")
	}
	if len(m.transcript) != 1 {
		t.Fatalf("Expected the user message in the transcript, got %d", len(m.transcript))
	}
	if m.transcript[0].Content != "hello there" {
		t.Errorf("Expected the submitted text, got %q", m.transcript[0].Content)
	}
	if m.input.Value() != "" {
		t.Errorf("Expected the input cleared after submit, got %q", m.input.Value())
	}
}

func TestSubmitWhileStreamingWarns(t *testing.T) {
	m := newTestModel(t)
	m, _ = startTestTurn(t, m, "hello there")
	m = typeRunes(t, m, "more")
	m, _ = keyPress(t, m, tea.KeyEnter)

	if !m.toasts.HasToasts() {
		t.Error("Expected a warning toast for submit during streaming")
	}
	if len(m.transcript) != 1 {
		t.Errorf("The second message must not enter the transcript, got %d", len(m.transcript))
	}
	if m.input.Value() != "more" {
		t.Errorf("The typed text must survive the refused submit, got %q", m.input.Value())
	}
}

func TestUnknownCommandShowsError(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/nosuchcmd")
	m, _ = keyPress(t, m, tea.KeyEnter)

	if !m.toasts.HasToasts() {
		t.Error("Expected an error toast for the unknown command")
	}
	if m.state.Streaming.IsStreaming {
		t.Error("An unknown command must not start a turn")
	}
	if m.input.Value() != "" {
		t.Errorf("Expected the input cleared, got %q", m.input.Value())
	}
}

func TestCommandDispatchShowsHelp(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/help")
	m, cmd := keyPress(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("Expected the command handler to return a command")
	}

	msg := cmd()
	help, ok := msg.(commands.ShowHelpMsg)
	if !ok {
		t.Fatalf("Expected ShowHelpMsg, got %T", msg)
	}

	m, _ = update(t, m, help)
	if !m.showHelp {
		t.Error("Expected the help overlay open after /help")
	}
}

// =============================================================================
// COMPLETION POPUP
// =============================================================================

func TestSlashOpensCompletionPopup(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/")

	if !m.showPopup {
		t.Error("Expected the popup after typing /")
	}
	if !m.popup.HasCompletions() {
		t.Error("Expected command completions for /")
	}
}

func TestCompletionNarrowsWithTyping(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/hel")

	comp := m.popup.GetSelectedCompletion()
	if comp == nil {
		t.Fatal("Expected a selected completion for /hel")
	}
	if comp.Value != "/help" {
		t.Errorf("Expected /help selected, got %q", comp.Value)
	}
}

func TestTabAcceptsCompletion(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/hel")
	m, _ = keyPress(t, m, tea.KeyTab)

	if m.input.Value() != "/help " {
		t.Errorf("Expected the completed command with a trailing space, got %q", m.input.Value())
	}
}

func TestPopupNavigation(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/")
	if !m.popup.HasCompletions() {
		t.Fatal("Expected completions for /")
	}
	first := m.popup.GetSelectedCompletion().Value

	m, _ = keyPress(t, m, tea.KeyDown)
	second := m.popup.GetSelectedCompletion().Value
	if second == first {
		t.Error("Expected down to move the selection")
	}

	m, _ = keyPress(t, m, tea.KeyUp)
	if got := m.popup.GetSelectedCompletion().Value; got != first {
		t.Errorf("Expected up to move back to %q, got %q", first, got)
	}
}

func TestPlainTextClosesPopup(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "/")
	if !m.showPopup {
		t.Fatal("Expected the popup open")
	}

	// Deleting the slash leaves plain text state behind.
	m, _ = keyPress(t, m, tea.KeyBackspace)
	if m.showPopup {
		t.Error("Expected the popup closed once the input is no longer a command")
	}
}

// =============================================================================
// ESCAPE PRIORITIES
// =============================================================================

func TestEscapeClosesPopupBeforeNotice(t *testing.T) {
	m := newTestModel(t)
	m.notice = "command output"
	m = typeRunes(t, m, "/")
	if !m.showPopup {
		t.Fatal("Expected the popup open")
	}

	m, _ = keyPress(t, m, tea.KeyEsc)
	if m.showPopup {
		t.Error("Expected the first esc to close the popup")
	}
	if m.notice == "" {
		t.Error("The notice must survive the popup dismissal")
	}

	m, _ = keyPress(t, m, tea.KeyEsc)
	if m.notice != "" {
		t.Error("Expected the second esc to clear the notice")
	}
}

func TestEscapeClearsErrorBanner(t *testing.T) {
	m := newTestModel(t)
	m.banner.SetError("connection refused")
	m.failedID = "msg-1"

	m, _ = keyPress(t, m, tea.KeyEsc)
	if m.banner.HasError() {
		t.Error("Expected esc to clear the banner")
	}
	if m.failedID != "" {
		t.Error("Expected the failed marker cleared with the banner")
	}
}

// =============================================================================
// CHROME SHORTCUTS
// =============================================================================

func TestHelpOverlaySwallowsDismissKey(t *testing.T) {
	m := newTestModel(t)
	m, _ = keyPress(t, m, tea.KeyF1)
	if !m.showHelp {
		t.Fatal("Expected F1 to open help")
	}

	m = typeRunes(t, m, "x")
	if m.showHelp {
		t.Error("Expected any key to dismiss help")
	}
	if m.input.Value() != "" {
		t.Errorf("The dismissal keystroke must not reach the input, got %q", m.input.Value())
	}
}

func TestToggleThinkingPanel(t *testing.T) {
	m := newTestModel(t)
	before := m.cfg.Thinking.Visible

	m, _ = keyPress(t, m, tea.KeyCtrlT)
	if m.cfg.Thinking.Visible == before {
		t.Error("Expected ctrl+t to flip the thinking panel setting")
	}
	if m.state.Thinking.Visible != m.cfg.Thinking.Visible {
		t.Error("Expected the reducer state to follow the setting")
	}
	if !m.toasts.HasToasts() {
		t.Error("Expected a toast announcing the toggle")
	}
}

func TestSaveShortcutEmitsSaveMsg(t *testing.T) {
	m := newTestModel(t)
	_, cmd := keyPress(t, m, tea.KeyCtrlS)
	if cmd == nil {
		t.Fatal("Expected a command from ctrl+s")
	}
	if _, ok := cmd().(commands.SaveConversationMsg); !ok {
		t.Errorf("Expected SaveConversationMsg, got %T", cmd())
	}
}

func TestExportShortcutEmitsMarkdownExport(t *testing.T) {
	m := newTestModel(t)
	_, cmd := keyPress(t, m, tea.KeyCtrlE)
	if cmd == nil {
		t.Fatal("Expected a command from ctrl+e")
	}
	msg, ok := cmd().(commands.ExportConversationMsg)
	if !ok {
		t.Fatalf("Expected ExportConversationMsg, got %T", cmd())
	}
	if msg.Format != "markdown" {
		t.Errorf("Expected the markdown quick export, got %q", msg.Format)
	}
}

// =============================================================================
// INPUT SIZING
// =============================================================================

func TestNewlineGrowsInput(t *testing.T) {
	m := newTestModel(t)
	m = typeRunes(t, m, "ab")
	if m.input.Height() != 1 {
		t.Fatalf("Expected a single-line input, got height %d", m.input.Height())
	}

	m, _ = keyPress(t, m, tea.KeyCtrlJ)
	m = typeRunes(t, m, "cd")

	if m.input.Value() != "ab\ncd" {
		t.Errorf("Expected ctrl+j to insert a newline, got %q", m.input.Value())
	}
	if m.input.Height() != 2 {
		t.Errorf("Expected the input to grow to 2 rows, got %d", m.input.Height())
	}
}

func TestInputHeightCapped(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 8; i++ {
		m = typeRunes(t, m, "line")
		m, _ = keyPress(t, m, tea.KeyCtrlJ)
	}

	if got := m.input.Height(); got > m.input.MaxHeight {
		t.Errorf("Expected the input capped at %d rows, got %d", m.input.MaxHeight, got)
	}
}