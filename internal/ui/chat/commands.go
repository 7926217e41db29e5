// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/share"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// Handlers for the messages the command registry emits. The registry's
// handlers own the storage work where they can; these apply results to
// the screen and run the steps that need live model state (the current
// transcript, the last reply, the active theme).

// =============================================================================
// HELP AND CONVERSATION
// =============================================================================

func (m Model) handleShowHelp(msg commands.ShowHelpMsg) (tea.Model, tea.Cmd) {
	m.showHelp = true
	m.helpTopic = msg.Topic
	return m, nil
}

func (m Model) handleClearConversation() (tea.Model, tea.Cmd) {
	m.transcript = nil
	m.failedID = ""
	m.streamingID = ""
	m.draining = false
	m.typer = nil
	m.notice = ""
	m.banner.Clear()
	m.state = core.ReduceAll(m.state, core.ResetStream{}, core.ResetThinking{})

	if m.sessionMgr != nil {
		m.sessionMgr.Reset()
	}
	m.sessionTitle = ""
	m.header.SetSessionTitle("")
	m.showWelcome = true

	m.updateViewport()
	m.toasts.Info("conversation cleared")
	return m, components.ToastTickCmd()
}

// =============================================================================
// SESSIONS
// =============================================================================

func (m Model) handleSaveConversation(msg commands.SaveConversationMsg) (tea.Model, tea.Cmd) {
	if len(m.transcript) == 0 {
		m.toasts.Warning("nothing to save yet")
		return m, components.ToastTickCmd()
	}
	if m.sessionMgr == nil {
		m.toasts.Error("session storage is not available")
		return m, components.ToastTickCmd()
	}

	m.sessionMgr.Track(m.transcript)
	mgr := m.sessionMgr
	store := m.sessions
	title := strings.TrimSpace(msg.Title)

	return m, func() tea.Msg {
		sess, err := mgr.Save()
		if err != nil {
			return commands.SaveCompleteMsg{Error: err}
		}
		if title != "" && store != nil {
			if err := store.Rename(sess.ID, title); err == nil {
				sess.Title = title
			}
		}
		return commands.SaveCompleteMsg{ID: sess.ID, Title: sess.Title}
	}
}

func (m Model) handleSaveComplete(msg commands.SaveCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("save failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	m.sessionTitle = msg.Title
	m.header.SetSessionTitle(msg.Title)
	m.statusBar.SetSaved(time.Now())
	m.toasts.Success("saved: " + msg.Title)
	return m, components.ToastTickCmd()
}

func (m Model) handleSessionLoaded(msg commands.SessionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("load failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}

	messages := make([]model.Message, len(msg.Messages))
	for i, sm := range msg.Messages {
		messages[i] = model.Message{
			ID:        sm.ID,
			Role:      model.Role(sm.Role),
			Content:   sm.Content,
			Timestamp: sm.Timestamp,
		}
	}

	m.transcript = messages
	m.failedID = ""
	m.banner.Clear()
	m.notice = ""
	m.showWelcome = false
	m.picker = nil
	m.state = core.ReduceAll(m.state, core.ResetStream{}, core.ResetThinking{})

	if m.sessionMgr != nil {
		m.sessionMgr.Resume(model.Session{
			ID:       msg.ID,
			Title:    msg.Title,
			Messages: messages,
		})
	}
	m.sessionTitle = msg.Title
	m.header.SetSessionTitle(msg.Title)

	m.updateViewport()
	m.viewport.GotoBottom()
	m.toasts.Success("loaded: " + msg.Title)
	return m, components.ToastTickCmd()
}

func (m Model) handleSessionList(msg commands.SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("could not list sessions: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	if len(msg.Sessions) == 0 {
		m.toasts.Info("no saved sessions yet; /save stores the current one")
		return m, components.ToastTickCmd()
	}
	m.picker = newSessionPicker(m.theme, msg.Sessions, "")
	m.picker.SetSize(m.width, m.height)
	return m, nil
}

func (m Model) handleSearchResults(msg commands.SearchResultsMsg) (tea.Model, tea.Cmd) {
	if len(msg.Sessions) == 0 {
		m.toasts.Info(fmt.Sprintf("no sessions match %q", msg.Query))
		return m, components.ToastTickCmd()
	}
	m.picker = newSessionPicker(m.theme, msg.Sessions, msg.Query)
	m.picker.SetSize(m.width, m.height)
	return m, nil
}

func (m Model) handleSessionDeleted(msg commands.SessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("delete failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("session deleted")

	// Refresh an open picker in place.
	if m.picker != nil && m.sessions != nil {
		query := m.picker.Filter()
		m.picker.SetSessions(sessionInfoList(m.sessions.List()))
		m.picker.SetFilter(query)
	}
	return m, components.ToastTickCmd()
}

// =============================================================================
// CLIPBOARD
// =============================================================================

func (m Model) handleCopyToClipboard(msg commands.CopyToClipboardMsg) (tea.Model, tea.Cmd) {
	content := msg.Content
	if content == "" {
		content = m.lastAssistantContent()
	}
	if content == "" {
		m.toasts.Warning("no reply to copy yet")
		return m, components.ToastTickCmd()
	}
	return m, copyToClipboard(content)
}

func (m Model) handleCopyComplete(msg commands.CopyCompleteMsg) (tea.Model, tea.Cmd) {
	if !msg.Success {
		detail := "clipboard unavailable"
		if msg.Error != nil {
			detail = msg.Error.Error()
		}
		m.toasts.Error("copy failed: " + detail)
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("copied to clipboard")
	return m, components.ToastTickCmd()
}

// =============================================================================
// EXPORT
// =============================================================================

func (m Model) handleExportConversation(msg commands.ExportConversationMsg) (tea.Model, tea.Cmd) {
	if len(m.transcript) == 0 {
		m.toasts.Warning("nothing to export yet")
		return m, components.ToastTickCmd()
	}

	sess := model.NewSession(m.transcript)
	if m.sessionTitle != "" {
		sess.Title = m.sessionTitle
	}

	opts := export.DefaultOptions()
	opts.OutputDir = m.cfg.Export.OutputDir
	if msg.Dir != "" {
		opts.OutputDir = msg.Dir
	}
	opts.IncludeMetadata = m.cfg.Export.IncludeMetadata
	opts.IncludeTimestamps = m.cfg.Export.IncludeTimestamps
	opts.OpenAfterExport = m.cfg.Export.OpenAfterExport

	format := msg.Format
	return m, func() tea.Msg {
		exporter, err := export.For(format, opts)
		if err != nil {
			return commands.ExportCompleteMsg{Error: err}
		}
		path, err := export.ExportToFile(&sess, exporter, opts)
		return commands.ExportCompleteMsg{Path: path, Error: err}
	}
}

func (m Model) handleExportComplete(msg commands.ExportCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("export failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("exported: " + msg.Path)
	return m, components.ToastTickCmd()
}

// =============================================================================
// SHARING
// =============================================================================

func (m Model) handleShareConversation(msg commands.ShareConversationMsg) (tea.Model, tea.Cmd) {
	if len(m.transcript) == 0 {
		m.toasts.Warning("nothing to share yet")
		return m, components.ToastTickCmd()
	}
	if m.shareClient == nil {
		m.toasts.Error("no share server configured; set share.server_url")
		return m, components.ToastTickCmd()
	}

	sess := model.NewSession(m.transcript)
	if m.sessionTitle != "" {
		sess.Title = m.sessionTitle
	}
	client := m.shareClient
	passphrase := msg.Passphrase

	return m, func() tea.Msg {
		snap, err := share.NewSnapshot(&sess, passphrase)
		if err != nil {
			return commands.ShareCompleteMsg{Error: err}
		}
		if err := client.Create(snap); err != nil {
			return commands.ShareCompleteMsg{Error: err}
		}
		return commands.ShareCompleteMsg{ID: snap.ID, URL: client.ShareURL(snap.ID)}
	}
}

func (m Model) handleShareComplete(msg commands.ShareCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("share failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	m.notice = fmt.Sprintf("Snapshot published\n\n  id:  %s\n  url: %s\n\nAnyone with the link can read it.", msg.ID, msg.URL)
	m.toasts.Success("snapshot published")
	return m, components.ToastTickCmd()
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (m Model) handleDocumentList(msg commands.DocumentListMsg) (tea.Model, tea.Cmd) {
	if len(msg.Documents) == 0 {
		m.notice = "No documents in the workbench. /doc save <title> keeps the last reply."
		return m, nil
	}

	var b strings.Builder
	b.WriteString("Workbench documents\n\n")
	for _, d := range msg.Documents {
		fmt.Fprintf(&b, "  %-24s %8s  %s  (%s)\n", truncateRunes(d.Name, 24), formatSize(d.Size), d.UploadedAt, d.ID)
	}
	m.notice = strings.TrimRight(b.String(), "\n")
	return m, nil
}

func (m Model) handleSaveDocument(msg commands.SaveDocumentMsg) (tea.Model, tea.Cmd) {
	content := m.lastAssistantContent()
	if content == "" {
		m.toasts.Warning("no reply to keep yet")
		return m, components.ToastTickCmd()
	}
	if m.documents == nil {
		m.toasts.Error("document storage is not available")
		return m, components.ToastTickCmd()
	}

	doc, err := m.documents.Save(msg.Name, content)
	if err != nil {
		m.toasts.Error("could not save document: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("kept as document: " + doc.Name)
	return m, components.ToastTickCmd()
}

func (m Model) handleDocumentLoaded(msg commands.DocumentLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("document not found: " + msg.ID)
		return m, components.ToastTickCmd()
	}
	m.notice = fmt.Sprintf("%s\n\n%s", msg.Name, msg.Content)
	return m, nil
}

func (m Model) handleDocumentDeleted(msg commands.DocumentDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("delete failed: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("document deleted")
	return m, components.ToastTickCmd()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m Model) handleThemeChanged(msg commands.ThemeChangedMsg) (tea.Model, tea.Cmd) {
	m.applyTheme(msg.Theme)
	m.toasts.Success("theme: " + msg.Theme)
	return m, components.ToastTickCmd()
}

func (m Model) handleTypingSpeed(msg commands.TypingSpeedMsg) (tea.Model, tea.Cmd) {
	m.statusBar.TypingSpeed = m.cfg.Typing.Speed
	m.statusBar.ReducedMotion = m.cfg.Typing.ReducedMotion
	m.thinkPanel.SetReducedMotion(m.cfg.Typing.ReducedMotion)
	m.welcome.SetTypingDesc(typingDesc(m.cfg))

	if msg.Instant {
		m.toasts.Success("typing: instant")
	} else {
		m.toasts.Success(fmt.Sprintf("typing: %d chars/sec", msg.Speed))
	}
	return m, components.ToastTickCmd()
}

func (m Model) handleToggleThinking(msg commands.ToggleThinkingMsg) (tea.Model, tea.Cmd) {
	m.state = core.Reduce(m.state, core.ShowThinking{Visible: msg.Visible})
	if msg.Visible {
		m.toasts.Info("thinking panel on")
	} else {
		m.toasts.Info("thinking panel off")
	}
	return m, components.ToastTickCmd()
}

func (m Model) handleSourceSwitch(msg commands.SourceSwitchMsg) (tea.Model, tea.Cmd) {
	source := components.SourceSimulated
	if msg.Source == "network" {
		source = components.SourceNetwork
	}
	m.header.SetSource(source)
	m.statusBar.Source = msg.Source
	m.welcome.SetSource(msg.Source)
	m.toasts.Success("source: " + msg.Source)
	return m, components.ToastTickCmd()
}

func (m Model) handleShowConfig(msg commands.ShowConfigMsg) (tea.Model, tea.Cmd) {
	if msg.Key != "" {
		m.notice = fmt.Sprintf("%s = %s", msg.Key, msg.Value)
		return m, nil
	}

	var b strings.Builder
	b.WriteString("Configuration\n\n")
	for _, key := range commands.ConfigKeys() {
		val, err := m.cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  %-28s = %v\n", key, val)
	}
	b.WriteString("\n/config <key> <value> changes a setting for this run.")
	m.notice = b.String()
	return m, nil
}

func (m Model) handleConfigUpdate(msg commands.ConfigUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Error("config: " + msg.Error.Error())
		return m, components.ToastTickCmd()
	}

	m.applyConfigSideEffects(msg.Key)
	m.toasts.Success(fmt.Sprintf("%s = %v", msg.Key, msg.Value))
	return m, components.ToastTickCmd()
}

// applyConfigSideEffects refreshes whatever part of the screen a settings
// key feeds. The config struct itself was already updated by the handler.
func (m *Model) applyConfigSideEffects(key string) {
	switch {
	case key == "ui.theme":
		m.applyTheme(m.cfg.UI.Theme)

	case key == "ui.show_timestamps":
		m.msgList.ShowTimestamps = m.cfg.UI.ShowTimestamps
		m.updateViewport()

	case strings.HasPrefix(key, "typing."):
		m.statusBar.TypingSpeed = m.cfg.Typing.Speed
		m.statusBar.ReducedMotion = m.cfg.Typing.ReducedMotion
		m.thinkPanel.SetReducedMotion(m.cfg.Typing.ReducedMotion)
		m.welcome.SetTypingDesc(typingDesc(m.cfg))

	case key == "thinking.visible":
		m.state = core.Reduce(m.state, core.ShowThinking{Visible: m.cfg.Thinking.Visible})

	case key == "chat.source":
		source := components.SourceSimulated
		if m.cfg.Chat.Source == "network" {
			source = components.SourceNetwork
		}
		m.header.SetSource(source)
		m.statusBar.Source = m.cfg.Chat.Source
		m.welcome.SetSource(m.cfg.Chat.Source)

	case key == "storage.autosave_secs" && m.sessionMgr != nil:
		m.sessionMgr.SetAutoSaveInterval(time.Duration(m.cfg.Storage.AutosaveSecs) * time.Second)
		m.sessionMgr.SetAutoSaveEnabled(m.cfg.Storage.AutosaveSecs > 0)
	}
}

func (m Model) handleStatusInfo(msg commands.StatusInfoMsg) (tea.Model, tea.Cmd) {
	var b strings.Builder
	b.WriteString("Status\n\n")
	fmt.Fprintf(&b, "  source          %s\n", msg.Source)
	if msg.SessionID != "" {
		fmt.Fprintf(&b, "  session         %s (started %s)\n", msg.SessionID, msg.SessionStart)
	} else {
		b.WriteString("  session         unsaved\n")
	}
	fmt.Fprintf(&b, "  messages        %d\n", len(m.transcript))
	fmt.Fprintf(&b, "  idle            %s\n", msg.IdleTime)
	fmt.Fprintf(&b, "  unsaved changes %v\n", msg.Dirty)
	if msg.ReducedMotion {
		b.WriteString("  typing          instant\n")
	} else {
		fmt.Fprintf(&b, "  typing          %d chars/sec\n", msg.TypingSpeed)
	}
	fmt.Fprintf(&b, "  storage         %s\n", msg.StoreBackend)
	if msg.ShareServer != "" {
		fmt.Fprintf(&b, "  share server    %s\n", msg.ShareServer)
	}
	m.notice = strings.TrimRight(b.String(), "\n")
	return m, nil
}

func (m Model) handleCommandError(msg commands.ErrorMsg) (tea.Model, tea.Cmd) {
	m.banner.Title = msg.Title
	m.banner.Message = msg.Message
	m.banner.Tip = msg.Tip
	return m, nil
}

// =============================================================================
// AUTOSAVE AND CONFIG RELOAD
// =============================================================================

func (m Model) handleAutoSaved(msg session.AutoSavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warnf("autosave failed: %v", msg.Err)
		m.toasts.Warning("autosave failed: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}
	m.statusBar.SetSaved(time.Now())
	if m.sessionTitle == "" {
		m.sessionTitle = msg.Session.Title
		m.header.SetSessionTitle(msg.Session.Title)
	}
	return m, nil
}

func (m Model) handleConfigReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.cfg != nil {
		m.applyReloadedConfig(msg.cfg)
		m.toasts.Info("configuration reloaded")
	}

	cmds := []tea.Cmd{components.ToastTickCmd()}
	if m.reloads != nil {
		cmds = append(cmds, listenReloads(m.reloads))
	}
	return m, tea.Batch(cmds...)
}

// applyReloadedConfig copies a freshly loaded config over the live one
// and refreshes everything on screen that depends on it. The pointer
// identity is preserved because the command context shares it.
func (m *Model) applyReloadedConfig(next *config.Config) {
	themeChanged := next.UI.Theme != m.cfg.UI.Theme
	*m.cfg = *next

	if themeChanged {
		m.applyTheme(m.cfg.UI.Theme)
	} else {
		m.configureChrome()
	}

	if m.sessionMgr != nil {
		m.sessionMgr.SetAutoSaveInterval(time.Duration(m.cfg.Storage.AutosaveSecs) * time.Second)
		m.sessionMgr.SetAutoSaveEnabled(m.cfg.Storage.AutosaveSecs > 0)
	}

	m.state = core.Reduce(m.state, core.ShowThinking{Visible: m.cfg.Thinking.Visible})
	m.updateViewport()
}

// applyTheme rebuilds the themed components. Their display state is
// re-seeded from the model afterwards.
func (m *Model) applyTheme(mode string) {
	m.theme = styles.NewThemeWithMode(mode)
	m.header = components.NewHeader(m.theme)
	m.statusBar = components.NewStatusBar(m.theme)
	m.thinkPanel = components.NewThinkingPanel(m.theme)
	m.banner = components.NewErrorBanner(m.theme)
	m.popup = components.NewCompletionPopup(m.theme)
	m.msgList = components.NewMessageList(m.theme)
	m.welcome = components.NewWelcome(m.theme)

	m.configureChrome()
	m.header.SetSessionTitle(m.sessionTitle)
	m.syncComponentSizes()
	m.updateViewport()
}
