// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/share"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/stream"
	"github.com/jeranaias/parley/internal/typing"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps carries everything the chat view needs from the application shell.
// Reloads may be nil when config hot-reload is disabled.
type Deps struct {
	Config    *config.Config
	Log       logging.Logger
	Sessions  *storage.SessionStore
	Documents *storage.DocumentStore
	Share     *share.Client
	Session   *session.Manager
	Reloads   <-chan *config.Config
	Version   string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Dimensions
	width  int
	height int

	// Styling
	theme *styles.Theme

	// Reducer-owned state: streaming lifecycle plus the thinking timeline.
	// Everything here changes only through core.Reduce.
	state core.State

	// Committed transcript. The in-flight assistant turn lives in
	// state.Streaming until it finishes and is appended here.
	transcript []model.Message

	// In-flight turn bookkeeping
	streamGen   int                      // generation counter; stale messages are dropped
	streamingID string                   // assistant message ID for the in-flight turn
	chunks      chan stream.Chunk        // pump channel filled by the controller handler
	controller  *stream.Controller       // one stream in flight at a time
	typer       *typing.Typer            // paces the visible portion of the reply
	completion  *stream.CompletionSource // set when the turn used the completion endpoint
	deltaCount  int                      // content chunks seen this turn
	pendingTool string                   // tool name the thinking timeline shows this turn
	draining    bool                     // stream done, typing renderer still catching up
	failedID    string                   // message whose stream errored

	// Configuration
	cfg     *config.Config
	reloads <-chan *config.Config

	// Services
	log         logging.Logger
	sessions    *storage.SessionStore
	documents   *storage.DocumentStore
	shareClient *share.Client
	sessionMgr  *session.Manager

	// Command system
	registry  *commands.Registry
	parser    *commands.Parser
	completer *commands.Completer
	cmdCtx    *commands.Context

	// UI components
	viewport   viewport.Model
	input      textarea.Model
	header     *components.Header
	statusBar  *components.StatusBar
	thinkPanel *components.ThinkingPanel
	banner     *components.ErrorBanner
	popup      *components.CompletionPopup
	toasts     *components.ToastManager
	msgList    *components.MessageList
	welcome    components.Welcome

	// Session picker overlay, nil when closed
	picker *sessionPicker

	keyMap KeyMap

	// Screen state
	showWelcome  bool
	showHelp     bool
	helpTopic    string
	showPopup    bool
	notice       string // last command output block, shown above the input
	sessionTitle string
	version      string

	quitting bool
}

// New creates the chat model from its dependencies.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Log
	if log == nil {
		log = logging.Nop()
	}

	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	ta := newInputArea()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)

	cmdCtx := commands.NewContext(cfg, deps.Sessions, deps.Documents, deps.Share, deps.Session)
	cmdCtx.Log = log.With("commands")

	m := Model{
		theme:       theme,
		state:       core.NewState(),
		cfg:         cfg,
		reloads:     deps.Reloads,
		log:         log.With("chat-ui"),
		sessions:    deps.Sessions,
		documents:   deps.Documents,
		shareClient: deps.Share,
		sessionMgr:  deps.Session,
		controller:  stream.NewController(),
		registry:    registry,
		parser:      commands.NewParser(registry),
		completer:   completer,
		cmdCtx:      cmdCtx,
		viewport:    vp,
		input:       ta,
		header:      components.NewHeader(theme),
		statusBar:   components.NewStatusBar(theme),
		thinkPanel:  components.NewThinkingPanel(theme),
		banner:      components.NewErrorBanner(theme),
		popup:       components.NewCompletionPopup(theme),
		toasts:      components.NewToastManager(),
		msgList:     components.NewMessageList(theme),
		welcome:     components.NewWelcome(theme),
		keyMap:      DefaultKeyMap(),
		showWelcome: true,
		version:     deps.Version,
	}

	m.configureChrome()
	m.wireCompleter()

	return m
}

// newInputArea builds the multi-line input with Enter reserved for
// sending. Ctrl+J inserts a literal newline instead.
func newInputArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message, or / for commands..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 4096
	ta.MaxHeight = 5
	ta.SetHeight(1)
	ta.Focus()
	ta.Cursor.SetMode(cursor.CursorBlink)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"))
	return ta
}

// configureChrome seeds the header, status bar and welcome screen from
// the current config.
func (m *Model) configureChrome() {
	source := components.SourceSimulated
	if m.cfg.Chat.Source == "network" {
		source = components.SourceNetwork
	}
	m.header.SetSource(source)

	m.statusBar.Source = m.cfg.Chat.Source
	m.statusBar.TypingSpeed = m.cfg.Typing.Speed
	m.statusBar.ReducedMotion = m.cfg.Typing.ReducedMotion

	m.thinkPanel.SetReducedMotion(m.cfg.Typing.ReducedMotion)
	m.msgList.ShowTimestamps = m.cfg.UI.ShowTimestamps

	m.welcome.SetVersion(m.version)
	m.welcome.SetSource(m.cfg.Chat.Source)
	m.welcome.SetTypingDesc(typingDesc(m.cfg))
	m.welcome.SetStorageName(m.cfg.Storage.Backend)
}

// wireCompleter connects the dynamic completion callbacks to live data.
func (m *Model) wireCompleter() {
	sessions := m.sessions
	documents := m.documents

	if sessions != nil {
		m.completer.SessionsFn = func() []commands.SessionInfo {
			return sessionInfoList(sessions.List())
		}
	}
	if documents != nil {
		m.completer.DocsFn = func() []commands.DocumentInfo {
			return documentInfoList(documents.List())
		}
	}
	m.completer.ConfigFn = commands.ConfigKeys
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the session clock and, when hot reload is
// wired, the config listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, session.TickCmd()}
	if m.reloads != nil {
		cmds = append(cmds, listenReloads(m.reloads))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Streaming lifecycle
	case streamChunkMsg:
		return m.handleStreamChunk(msg)

	case frameMsg:
		return m.handleFrame(msg)

	case thinkStepMsg:
		return m.handleThinkStep(msg)

	case cancelArmedMsg:
		return m.handleCancelArmed(msg)

	case relatedQueryMsg:
		return m.handleRelatedQuery(msg)

	// Configuration
	case configReloadedMsg:
		return m.handleConfigReload(msg)

	// Session clock and autosave
	case session.TickMsg:
		if m.sessionMgr == nil {
			return m, nil
		}
		return m, m.sessionMgr.HandleTick()

	case session.AutoSavedMsg:
		return m.handleAutoSaved(msg)

	// Toast expiry
	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	// Command results
	case commands.ShowHelpMsg:
		return m.handleShowHelp(msg)
	case commands.ClearConversationMsg:
		return m.handleClearConversation()
	case commands.SaveConversationMsg:
		return m.handleSaveConversation(msg)
	case commands.SaveCompleteMsg:
		return m.handleSaveComplete(msg)
	case commands.SessionLoadedMsg:
		return m.handleSessionLoaded(msg)
	case commands.SessionListMsg:
		return m.handleSessionList(msg)
	case commands.LoadSessionMsg, commands.ListSessionsMsg:
		// Emitted only when no session store is wired.
		m.toasts.Error("session storage is not available")
		return m, components.ToastTickCmd()
	case commands.SearchResultsMsg:
		return m.handleSearchResults(msg)
	case commands.SessionDeletedMsg:
		return m.handleSessionDeleted(msg)
	case commands.CopyToClipboardMsg:
		return m.handleCopyToClipboard(msg)
	case commands.CopyCompleteMsg:
		return m.handleCopyComplete(msg)
	case commands.ExportConversationMsg:
		return m.handleExportConversation(msg)
	case commands.ExportCompleteMsg:
		return m.handleExportComplete(msg)
	case commands.ShareConversationMsg:
		return m.handleShareConversation(msg)
	case commands.ShareCompleteMsg:
		return m.handleShareComplete(msg)
	case commands.DocumentListMsg:
		return m.handleDocumentList(msg)
	case commands.SaveDocumentMsg:
		return m.handleSaveDocument(msg)
	case commands.DocumentLoadedMsg:
		return m.handleDocumentLoaded(msg)
	case commands.DocumentDeletedMsg:
		return m.handleDocumentDeleted(msg)
	case commands.ThemeChangedMsg:
		return m.handleThemeChanged(msg)
	case commands.TypingSpeedMsg:
		return m.handleTypingSpeed(msg)
	case commands.ToggleThinkingMsg:
		return m.handleToggleThinking(msg)
	case commands.SourceSwitchMsg:
		return m.handleSourceSwitch(msg)
	case commands.ShowConfigMsg:
		return m.handleShowConfig(msg)
	case commands.ConfigUpdateMsg:
		return m.handleConfigUpdate(msg)
	case commands.StatusInfoMsg:
		return m.handleStatusInfo(msg)
	case commands.ErrorMsg:
		return m.handleCommandError(msg)
	case commands.SystemMessageMsg:
		m.notice = msg.Content
		return m, nil
	}

	// Anything else (cursor blink, viewport internals) goes to the
	// focused widgets.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderScreen()
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Reserved rows around the transcript viewport. Conservative
	// (slightly larger than typical render) so the viewport is never too
	// tall; renderScreen measures the real heights and corrects any
	// remainder.
	const (
		headerHeight    = 2
		inputAreaHeight = 4
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if m.state.Thinking.Visible && m.streamActive() {
		viewportHeight -= panelReservedRows
	}
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	viewportWidth := m.width
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	m.syncComponentSizes()
	m.updateViewport()

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// syncComponentSizes pushes the current terminal size into every
// component that renders to a width.
func (m *Model) syncComponentSizes() {
	// Input content width: full width minus the prompt and a margin.
	inputWidth := m.width - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	contentWidth := m.width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.thinkPanel.SetWidth(contentWidth)
	m.banner.SetWidth(contentWidth)
	m.popup.SetWidth(minInt(contentWidth, 64))
	m.msgList.SetWidth(contentWidth)
	m.welcome.SetSize(m.width, m.height)
	if m.picker != nil {
		m.picker.SetSize(m.width, m.height)
	}
}

// panelReservedRows approximates the thinking panel's height while a
// stream runs, for viewport sizing between renders.
const panelReservedRows = 9

// streamActive reports whether a reply is streaming or still draining
// into view.
func (m Model) streamActive() bool {
	return m.state.Streaming.IsStreaming || m.draining
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// updateViewport rebuilds the transcript content. The in-flight turn is
// appended as a pseudo-message whose content is the typing renderer's
// visible prefix.
func (m *Model) updateViewport() {
	atBottom := m.viewport.AtBottom()

	msgs := m.transcript
	if m.streamActive() && m.streamingID != "" {
		partial := model.Message{
			ID:      m.streamingID,
			Role:    model.RoleAssistant,
			Content: m.visibleReply(),
		}
		msgs = append(append([]model.Message(nil), m.transcript...), partial)
	}

	m.msgList.Messages = msgs
	m.msgList.StreamingID = m.currentStreamingID()
	m.msgList.FailedID = m.failedID

	m.viewport.SetContent(m.msgList.View())
	if atBottom || m.streamActive() {
		m.viewport.GotoBottom()
	}
}

// visibleReply returns the portion of the in-flight reply the typing
// renderer has revealed so far.
func (m Model) visibleReply() string {
	if m.typer == nil {
		return m.state.Streaming.Content
	}
	return m.typer.Visible()
}

// currentStreamingID returns the ID the transcript should render with a
// cursor, or empty when idle.
func (m Model) currentStreamingID() string {
	if m.streamActive() {
		return m.streamingID
	}
	return ""
}

// typingDesc describes the typing configuration for the welcome screen.
func typingDesc(cfg *config.Config) string {
	if cfg.Typing.ReducedMotion {
		return "instant"
	}
	return pluralize(cfg.Typing.Speed, "char", "chars") + "/sec"
}
