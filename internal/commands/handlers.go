// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// SESSION INFO
// =============================================================================

// SessionInfo contains list metadata about a saved session.
type SessionInfo struct {
	ID        string
	Title     string
	Preview   string
	UpdatedAt string
	MsgCount  int
}

// sessionInfos converts stored sessions to handler list metadata.
func sessionInfos(sessions []model.Session) []SessionInfo {
	infos := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = SessionInfo{
			ID:        s.ID,
			Title:     s.Title,
			Preview:   s.LastMessage,
			UpdatedAt: s.Timestamp.Format("2006-01-02 15:04"),
			MsgCount:  s.MessageCount,
		}
	}
	return infos
}

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct {
	Topic string // Optional topic for specific help
}

// ClearConversationMsg starts a fresh conversation.
type ClearConversationMsg struct{}

// SaveConversationMsg triggers saving the current conversation.
type SaveConversationMsg struct {
	Title string // Optional title override
}

// SaveCompleteMsg indicates save completion.
type SaveCompleteMsg struct {
	ID    string
	Title string
	Error error
}

// LoadSessionMsg triggers loading a session when no store is wired.
type LoadSessionMsg struct {
	ID string
}

// SessionLoadedMsg carries a loaded session back to the UI.
type SessionLoadedMsg struct {
	ID       string
	Title    string
	Messages []StoredMessage
	Error    error
}

// StoredMessage mirrors model.Message for handler output.
type StoredMessage struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

// ListSessionsMsg triggers showing the session list when no store is wired.
type ListSessionsMsg struct{}

// SessionListMsg contains the list of available sessions.
type SessionListMsg struct {
	Sessions []SessionInfo
	Error    error
}

// SessionDeletedMsg indicates a stored session was deleted.
type SessionDeletedMsg struct {
	ID    string
	Error error
}

// SearchResultsMsg contains sessions matching a search query.
type SearchResultsMsg struct {
	Query    string
	Sessions []SessionInfo
}

// CopyToClipboardMsg triggers copying to clipboard.
// Content is filled by the app when empty (last assistant reply).
type CopyToClipboardMsg struct {
	Content string
}

// CopyCompleteMsg indicates copy completion.
type CopyCompleteMsg struct {
	Success bool
	Error   error
}

// ExportConversationMsg triggers exporting the conversation.
type ExportConversationMsg struct {
	Format string // "text", "markdown", "json", "pdf"
	Dir    string // Optional output directory override
}

// ExportCompleteMsg indicates export completion.
type ExportCompleteMsg struct {
	Path  string
	Error error
}

// ShareConversationMsg triggers publishing a snapshot of the conversation.
type ShareConversationMsg struct {
	Passphrase string // Optional snapshot passphrase
}

// ShareCompleteMsg indicates snapshot publication.
type ShareCompleteMsg struct {
	ID    string
	URL   string
	Error error
}

// DocumentListMsg contains the workbench document list.
type DocumentListMsg struct {
	Documents []DocumentInfo
}

// DocumentInfo contains list metadata about a workbench document.
type DocumentInfo struct {
	ID         string
	Name       string
	Size       int64
	UploadedAt string
}

// SaveDocumentMsg asks the app to save the last reply as a document.
// Content is filled by the app.
type SaveDocumentMsg struct {
	Name string
}

// DocumentLoadedMsg carries a fetched document back to the UI.
type DocumentLoadedMsg struct {
	ID      string
	Name    string
	Content string
	Error   error
}

// DocumentDeletedMsg indicates a document was deleted.
type DocumentDeletedMsg struct {
	ID    string
	Error error
}

// ThemeChangedMsg indicates a theme switch request.
type ThemeChangedMsg struct {
	Theme string // "dark", "light", "auto"
}

// TypingSpeedMsg indicates a typing speed change.
type TypingSpeedMsg struct {
	Speed   int  // Characters per second
	Instant bool // Bypass the animation entirely
}

// ToggleThinkingMsg shows or hides the thinking timeline panel.
type ToggleThinkingMsg struct {
	Visible bool
}

// SourceSwitchMsg indicates a reply source switch request.
type SourceSwitchMsg struct {
	Source string // "simulated", "network"
}

// ShowConfigMsg triggers showing configuration.
type ShowConfigMsg struct {
	Key   string // Optional specific key
	Value string // For display
}

// ConfigUpdateMsg indicates a config value was updated.
type ConfigUpdateMsg struct {
	Key      string
	Value    interface{}
	OldValue interface{}
	Error    error
}

// StatusInfoMsg contains detailed status information.
type StatusInfoMsg struct {
	Source        string
	SessionID     string
	SessionStart  string
	IdleTime      string
	Dirty         bool
	TypingSpeed   int
	ReducedMotion bool
	StoreBackend  string
	ShareServer   string
}

// ErrorMsg indicates an error occurred.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// SystemMessageMsg adds a system notice to the chat.
type SystemMessageMsg struct {
	Content string
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp shows help information.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return ShowHelpMsg{Topic: topic}
	}
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

// HandleNew starts a new conversation.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ClearConversationMsg{}
	}
}

// HandleSave saves the current conversation.
func HandleSave(ctx *Context, args []string) tea.Cmd {
	title := ""
	if len(args) > 0 {
		title = strings.Join(args, " ")
	}
	return func() tea.Msg {
		return SaveConversationMsg{Title: title}
	}
}

// HandleLoad loads a saved conversation.
func HandleLoad(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		// Show session list instead
		return HandleSessions(ctx, args)
	}

	sessionID := args[0]

	if ctx != nil && ctx.Sessions != nil {
		store := ctx.Sessions
		return func() tea.Msg {
			sess, err := store.Get(sessionID)
			if err != nil {
				return SessionLoadedMsg{ID: sessionID, Error: err}
			}

			messages := make([]StoredMessage, len(sess.Messages))
			for i, m := range sess.Messages {
				messages[i] = StoredMessage{
					ID:        m.ID,
					Role:      string(m.Role),
					Content:   m.Content,
					Timestamp: m.Timestamp,
				}
			}

			return SessionLoadedMsg{
				ID:       sess.ID,
				Title:    sess.Title,
				Messages: messages,
			}
		}
	}

	return func() tea.Msg {
		return LoadSessionMsg{ID: sessionID}
	}
}

// HandleClear clears the conversation history.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ClearConversationMsg{}
	}
}

// HandleCopy copies the last reply to the clipboard.
func HandleCopy(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		// The actual content will be filled by the app
		return CopyToClipboardMsg{}
	}
}

// HandleExport exports the conversation.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	format := "markdown" // Default to markdown
	if len(args) > 0 {
		format = strings.ToLower(args[0])
		// Support aliases
		switch format {
		case "md":
			format = "markdown"
		case "txt", "plain":
			format = "text"
		}
	}

	// Validate format
	switch format {
	case "text", "markdown", "json", "pdf":
		// Valid formats
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid export format",
				Message: fmt.Sprintf("Unknown format: %s", format),
				Tip:     "Supported formats: text, markdown, json, pdf",
			}
		}
	}

	dir := ""
	if len(args) > 1 {
		dir = args[1]
	}

	return func() tea.Msg {
		return ExportConversationMsg{Format: format, Dir: dir}
	}
}

// HandleSessions shows the session list.
func HandleSessions(ctx *Context, args []string) tea.Cmd {
	if ctx != nil && ctx.Sessions != nil {
		store := ctx.Sessions
		return func() tea.Msg {
			return SessionListMsg{Sessions: sessionInfos(store.List())}
		}
	}
	return func() tea.Msg {
		return ListSessionsMsg{}
	}
}

// HandleSearch searches saved sessions for a query string.
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing argument",
				Message: "/search requires a query",
				Tip:     "Usage: /search <query>",
			}
		}
	}

	query := strings.Join(args, " ")

	if ctx != nil && ctx.Sessions != nil {
		store := ctx.Sessions
		return func() tea.Msg {
			return SearchResultsMsg{
				Query:    query,
				Sessions: sessionInfos(store.Search(query)),
			}
		}
	}

	return func() tea.Msg {
		return SearchResultsMsg{Query: query}
	}
}

// HandleDelete deletes a saved session by ID.
func HandleDelete(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing argument",
				Message: "/delete requires a session ID",
				Tip:     "Usage: /delete <session_id> (see /sessions)",
			}
		}
	}

	sessionID := args[0]

	if ctx != nil && ctx.Sessions != nil {
		store := ctx.Sessions
		return func() tea.Msg {
			return SessionDeletedMsg{ID: sessionID, Error: store.Delete(sessionID)}
		}
	}

	return func() tea.Msg {
		return SessionDeletedMsg{ID: sessionID}
	}
}

// =============================================================================
// WORKBENCH HANDLERS
// =============================================================================

// HandleDocs lists workbench documents.
func HandleDocs(ctx *Context, args []string) tea.Cmd {
	if ctx != nil && ctx.Documents != nil {
		store := ctx.Documents
		return func() tea.Msg {
			docs := store.List()
			infos := make([]DocumentInfo, len(docs))
			for i, d := range docs {
				infos[i] = DocumentInfo{
					ID:         d.ID,
					Name:       d.Name,
					Size:       d.Size,
					UploadedAt: d.UploadedAt.Format("2006-01-02 15:04"),
				}
			}
			return DocumentListMsg{Documents: infos}
		}
	}
	return func() tea.Msg {
		return DocumentListMsg{}
	}
}

// HandleDoc saves, shows or deletes a workbench document.
func HandleDoc(ctx *Context, args []string) tea.Cmd {
	if len(args) < 2 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing argument",
				Message: "/doc requires an action and a document reference",
				Tip:     "Usage: /doc <save|show|delete> <title|id>",
			}
		}
	}

	action := strings.ToLower(args[0])
	ref := strings.Join(args[1:], " ")

	switch action {
	case "save":
		// Content is filled in by the app from the last reply
		return func() tea.Msg {
			return SaveDocumentMsg{Name: ref}
		}

	case "show":
		if ctx != nil && ctx.Documents != nil {
			store := ctx.Documents
			return func() tea.Msg {
				doc, err := store.Get(ref)
				if err != nil {
					return DocumentLoadedMsg{ID: ref, Error: err}
				}
				return DocumentLoadedMsg{ID: doc.ID, Name: doc.Name, Content: doc.Content}
			}
		}
		return func() tea.Msg {
			return DocumentLoadedMsg{ID: ref}
		}

	case "delete":
		if ctx != nil && ctx.Documents != nil {
			store := ctx.Documents
			return func() tea.Msg {
				return DocumentDeletedMsg{ID: ref, Error: store.Delete(ref)}
			}
		}
		return func() tea.Msg {
			return DocumentDeletedMsg{ID: ref}
		}

	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid action",
				Message: fmt.Sprintf("Unknown document action: %s", action),
				Tip:     "Valid actions: save, show, delete",
			}
		}
	}
}

// =============================================================================
// SHARING HANDLERS
// =============================================================================

// HandleShare publishes a read-only snapshot of the current conversation.
// The snapshot itself is assembled by the app, which holds the live messages.
func HandleShare(ctx *Context, args []string) tea.Cmd {
	passphrase := ""
	if len(args) > 0 {
		passphrase = args[0]
	}

	if ctx != nil && ctx.Share == nil {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Sharing not configured",
				Message: "No share server is configured",
				Tip:     "Set share.server_url in ~/.parley/config.toml",
			}
		}
	}

	return func() tea.Msg {
		return ShareConversationMsg{Passphrase: passphrase}
	}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// HandleTheme changes the color theme.
func HandleTheme(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		// Show current theme
		if ctx != nil && ctx.Config != nil {
			return func() tea.Msg {
				return SystemMessageMsg{Content: "Current theme: " + ctx.Config.UI.Theme}
			}
		}
		return func() tea.Msg {
			return SystemMessageMsg{Content: "Theme: dark (default)"}
		}
	}

	theme := strings.ToLower(args[0])
	switch theme {
	case "dark", "light", "auto":
		if ctx != nil && ctx.Config != nil {
			ctx.Config.UI.Theme = theme
		}
		return func() tea.Msg {
			return ThemeChangedMsg{Theme: theme}
		}
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid theme",
				Message: fmt.Sprintf("Unknown theme: %s", theme),
				Tip:     "Valid themes: dark, light, auto",
			}
		}
	}
}

// HandleSpeed sets the typing animation speed.
func HandleSpeed(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		if ctx != nil && ctx.Config != nil {
			current := ctx.Config.Typing.Speed
			desc := fmt.Sprintf("Typing speed: %d characters/second", current)
			if ctx.Config.Typing.ReducedMotion {
				desc = "Typing speed: instant (reduced motion)"
			}
			return func() tea.Msg {
				return SystemMessageMsg{Content: desc + "\nUsage: /speed <1-120|instant>"}
			}
		}
		return func() tea.Msg {
			return SystemMessageMsg{Content: "Usage: /speed <1-120|instant>"}
		}
	}

	arg := strings.ToLower(args[0])
	if arg == "instant" || arg == "off" {
		if ctx != nil && ctx.Config != nil {
			ctx.Config.Typing.ReducedMotion = true
		}
		return func() tea.Msg {
			return TypingSpeedMsg{Instant: true}
		}
	}

	speed, err := strconv.Atoi(arg)
	if err != nil || speed < 1 || speed > 120 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid speed",
				Message: fmt.Sprintf("Not a valid speed: %s", args[0]),
				Tip:     "Speed is 1-120 characters/second, or 'instant'",
			}
		}
	}

	if ctx != nil && ctx.Config != nil {
		ctx.Config.Typing.Speed = speed
		ctx.Config.Typing.ReducedMotion = false
	}
	return func() tea.Msg {
		return TypingSpeedMsg{Speed: speed}
	}
}

// HandleThinking toggles the thinking timeline panel.
func HandleThinking(ctx *Context, args []string) tea.Cmd {
	// Without an argument, flip the current setting.
	visible := true
	if ctx != nil && ctx.Config != nil {
		visible = !ctx.Config.Thinking.Visible
	}

	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on", "show", "true", "1":
			visible = true
		case "off", "hide", "false", "0":
			visible = false
		default:
			return func() tea.Msg {
				return ErrorMsg{
					Title:   "Invalid argument",
					Message: fmt.Sprintf("Unknown state: %s", args[0]),
					Tip:     "Usage: /thinking [on|off]",
				}
			}
		}
	}

	if ctx != nil && ctx.Config != nil {
		ctx.Config.Thinking.Visible = visible
	}
	return func() tea.Msg {
		return ToggleThinkingMsg{Visible: visible}
	}
}

// HandleSource switches where assistant replies come from.
func HandleSource(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		if ctx != nil && ctx.Config != nil {
			return func() tea.Msg {
				return SystemMessageMsg{Content: fmt.Sprintf("Current source: %s\nAvailable: simulated, network", ctx.Config.Chat.Source)}
			}
		}
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing argument",
				Message: "/source requires a source argument",
				Tip:     "Usage: /source <simulated|network>",
			}
		}
	}

	source := strings.ToLower(args[0])
	switch source {
	case "simulated", "network":
		if source == "network" && ctx != nil && ctx.Config != nil &&
			ctx.Config.Chat.EndpointURL == "" && ctx.Config.Chat.StreamURL == "" {
			return func() tea.Msg {
				return ErrorMsg{
					Title:   "No endpoint configured",
					Message: "The network source needs an endpoint",
					Tip:     "Set chat.endpoint_url or chat.stream_url first",
				}
			}
		}
		if ctx != nil && ctx.Config != nil {
			ctx.Config.Chat.Source = source
		}
		return func() tea.Msg {
			return SourceSwitchMsg{Source: source}
		}
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid source",
				Message: fmt.Sprintf("Unknown source: %s", source),
				Tip:     "Valid sources: simulated, network",
			}
		}
	}
}

// HandleConfig shows or sets configuration.
func HandleConfig(ctx *Context, args []string) tea.Cmd {
	// No args - show all config
	if len(args) == 0 {
		return func() tea.Msg {
			return ShowConfigMsg{}
		}
	}

	key := args[0]

	// Single arg - get config value
	if len(args) == 1 {
		if ctx != nil && ctx.Config != nil {
			val, err := ctx.Config.Get(key)
			if err != nil {
				return func() tea.Msg {
					return ErrorMsg{
						Title:   "Config error",
						Message: err.Error(),
						Tip:     "Use /config to see all available keys",
					}
				}
			}
			return func() tea.Msg {
				return ShowConfigMsg{Key: key, Value: fmt.Sprintf("%v", val)}
			}
		}
		return func() tea.Msg {
			return ShowConfigMsg{Key: key}
		}
	}

	// Two or more args - set config value
	value := strings.Join(args[1:], " ")
	if ctx != nil && ctx.Config != nil {
		oldVal, _ := ctx.Config.Get(key)
		if err := ctx.Config.Set(key, value); err != nil {
			return func() tea.Msg {
				return ConfigUpdateMsg{Key: key, Error: err}
			}
		}
		newVal, _ := ctx.Config.Get(key)
		return func() tea.Msg {
			return ConfigUpdateMsg{Key: key, Value: newVal, OldValue: oldVal}
		}
	}
	return func() tea.Msg {
		return ShowConfigMsg{Key: key, Value: value}
	}
}

// HandleStatus shows detailed status information.
func HandleStatus(ctx *Context, args []string) tea.Cmd {
	if ctx == nil {
		return func() tea.Msg {
			return StatusInfoMsg{}
		}
	}

	// Gather status info
	return func() tea.Msg {
		info := StatusInfoMsg{}

		if ctx.Config != nil {
			info.Source = ctx.Config.Chat.Source
			info.TypingSpeed = ctx.Config.Typing.Speed
			info.ReducedMotion = ctx.Config.Typing.ReducedMotion
			info.StoreBackend = ctx.Config.Storage.Backend
			info.ShareServer = ctx.Config.Share.ServerURL
		}

		if ctx.Session != nil {
			status := ctx.Session.GetStatus()
			info.SessionID = status.SessionID
			info.SessionStart = status.StartTime.Format("15:04:05")
			info.IdleTime = formatDuration(status.IdleTime)
			info.Dirty = ctx.Session.IsDirty()
		}

		return info
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// =============================================================================
// CONFIG KEYS
// =============================================================================

// ConfigKeys lists the dot-notation keys /config understands, for completion.
func ConfigKeys() []string {
	return []string{
		"chat.source",
		"chat.endpoint_url",
		"chat.stream_url",
		"chat.request_timeout_secs",
		"chat.cancel_grace_secs",
		"chat.simulated_word_delay_ms",
		"typing.speed",
		"typing.reduced_motion",
		"thinking.visible",
		"thinking.show_durations",
		"storage.backend",
		"storage.dir",
		"storage.max_sessions",
		"storage.autosave_secs",
		"export.output_dir",
		"export.include_metadata",
		"export.include_timestamps",
		"share.server_url",
		"share.port",
		"ui.theme",
		"ui.compact_mode",
		"ui.show_timestamps",
		"logging.level",
		"logging.file",
	}
}

// =============================================================================
// HELP TEXT GENERATION
// =============================================================================

// GenerateHelpText generates the help text for all commands.
// mode can be "quick", "all", or a category name (Navigation, Conversation,
// Workbench, Sharing, Settings).
func GenerateHelpText(r *Registry, mode string) string {
	mode = strings.ToLower(mode)

	// Default to quick mode
	if mode == "" {
		mode = "quick"
	}

	// Quick help - show only essential commands
	if mode == "quick" {
		return generateQuickHelp()
	}

	// Category-specific help
	categoryMap := map[string]string{
		"navigation":   "Navigation",
		"conversation": "Conversation",
		"workbench":    "Workbench",
		"sharing":      "Sharing",
		"settings":     "Settings",
	}
	if canonical, ok := categoryMap[mode]; ok {
		return generateCategoryHelp(r, canonical)
	}

	// Full help (default for "all" or unknown modes)
	return generateFullHelp(r)
}

// generateQuickHelp shows only the most essential commands
func generateQuickHelp() string {
	var sb strings.Builder

	sb.WriteString("Quick Help - Essential Commands\n")
	sb.WriteString("================================\n\n")

	sb.WriteString("  /help             Show this help (or try /help all)\n")
	sb.WriteString("  /new              Start new conversation\n")
	sb.WriteString("  /save             Save conversation\n")
	sb.WriteString("  /share            Publish a read-only snapshot\n")
	sb.WriteString("  /quit             Exit parley\n\n")

	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString("------------------\n")
	sb.WriteString("  Esc               Cancel reply / close overlay\n")
	sb.WriteString("  Ctrl+T            Toggle thinking panel\n")
	sb.WriteString("  Tab               Auto-complete\n")
	sb.WriteString("  PgUp/PgDn         Scroll history\n\n")

	sb.WriteString("Want more? Try:\n")
	sb.WriteString("  /help all          - Show all available commands\n")
	sb.WriteString("  /help conversation - Conversation management\n")
	sb.WriteString("  /help sharing      - Snapshot sharing\n")
	sb.WriteString("  /help settings     - Settings and configuration\n")

	return sb.String()
}

// generateCategoryHelp generates help for a specific category
func generateCategoryHelp(r *Registry, category string) string {
	var sb strings.Builder

	categories := r.ByCategory()
	cmds, ok := categories[category]
	if !ok || len(cmds) == 0 {
		return fmt.Sprintf("No commands found in category: %s\n\nTry /help all to see all categories.", category)
	}

	sb.WriteString(fmt.Sprintf("%s Commands\n", category))
	sb.WriteString(strings.Repeat("=", len(category)+9) + "\n\n")

	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}

		// Command name and aliases
		line := "  " + cmd.Name
		if len(cmd.Aliases) > 0 {
			line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}

		// Pad to align descriptions
		for len(line) < 30 {
			line += " "
		}

		line += cmd.Description
		sb.WriteString(line + "\n")

		// Usage if specified
		if cmd.Usage != "" {
			sb.WriteString("      Usage: " + cmd.Usage + "\n")
		}
	}

	sb.WriteString("\n")

	// Add relevant tips based on category
	switch category {
	case "Navigation":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Press Esc to close any overlay\n")
		sb.WriteString("  - Use Tab for command auto-completion\n")
	case "Conversation":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Conversations autosave while you chat\n")
		sb.WriteString("  - Re-saving an unchanged conversation updates it in place\n")
		sb.WriteString("  - /search matches titles and message text\n")
	case "Workbench":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - /doc save keeps the last reply as a named document\n")
		sb.WriteString("  - Documents persist alongside your sessions\n")
	case "Sharing":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Snapshots are read-only copies; later edits stay private\n")
		sb.WriteString("  - Add a passphrase to restrict who can view a snapshot\n")
	case "Settings":
		sb.WriteString("Tips:\n")
		sb.WriteString("  - Config changes persist automatically\n")
		sb.WriteString("  - Use /status to see current settings\n")
		sb.WriteString("  - /speed instant disables the typing animation\n")
	}

	sb.WriteString("\nUse /help all to see all commands, or /help quick for essentials.\n")

	return sb.String()
}

// generateFullHelp generates the complete help text with all commands
func generateFullHelp(r *Registry) string {
	var sb strings.Builder

	sb.WriteString("Available Commands\n")
	sb.WriteString("==================\n\n")

	categories := r.ByCategory()
	categoryOrder := []string{"Navigation", "Conversation", "Workbench", "Sharing", "Settings"}

	for _, category := range categoryOrder {
		cmds, ok := categories[category]
		if !ok || len(cmds) == 0 {
			continue
		}

		sb.WriteString(category + "\n")
		sb.WriteString(strings.Repeat("-", len(category)) + "\n")

		for _, cmd := range cmds {
			if cmd.Hidden {
				continue
			}

			// Command name and aliases
			line := "  " + cmd.Name
			if len(cmd.Aliases) > 0 {
				line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}

			// Pad to align descriptions
			for len(line) < 30 {
				line += " "
			}

			line += cmd.Description
			sb.WriteString(line + "\n")

			// Usage if specified
			if cmd.Usage != "" {
				sb.WriteString("      Usage: " + cmd.Usage + "\n")
			}
		}

		sb.WriteString("\n")
	}

	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString("------------------\n")
	sb.WriteString("  Esc             Cancel reply / close overlay\n")
	sb.WriteString("  Ctrl+T          Toggle thinking panel\n")
	sb.WriteString("  Ctrl+E          Export conversation\n")
	sb.WriteString("  Tab             Auto-complete\n")
	sb.WriteString("  PgUp/PgDn       Scroll history\n\n")

	sb.WriteString("Tip: Use /help <category> to see commands by category\n")
	sb.WriteString("Categories: navigation, conversation, workbench, sharing, settings\n")

	return sb.String()
}
