// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/stream"
	"github.com/jeranaias/parley/internal/util"
)

// historyFileName is the liner input history file under the config dir.
const historyFileName = "repl_history"

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI wraps the liner readline state with persistent input history
// stored under the config directory.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor. Ctrl+C is reported as a prompt abort
// instead of killing the process, so an in-flight reply can be cancelled
// without losing the REPL.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, historyFileName)
	}
	return &ChatCLI{line: line, historyFile: historyFile}
}

// LoadHistory reads persisted input history, if any.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// SaveHistory persists input history for the next run.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// ReadInput prompts for one line and appends non-empty input to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close releases the terminal back to cooked mode.
func (c *ChatCLI) Close() {
	c.line.Close()
}

// =============================================================================
// REPL SESSION
// =============================================================================

// ReplSession carries the state of one plain-mode chat run: the stores,
// the accumulated transcript, and the reducer state that the streaming
// handler feeds. The TUI drives the same reducer; only the rendering
// differs.
type ReplSession struct {
	cfg      *config.Config
	log      logging.Logger
	sessions *storage.SessionStore
	state    chat.State
	messages []model.Message
	saved    bool
	quiet    bool

	startTime time.Time
	turns     int

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (s *ReplSession) setCancel(fn context.CancelFunc) {
	s.mu.Lock()
	s.cancel = fn
	s.mu.Unlock()
}

// cancelActive aborts the in-flight stream, if any. Called from the
// signal goroutine.
func (s *ReplSession) cancelActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleChatCommand runs the plain readline REPL, the fallback for
// terminals where the full-screen interface is unwanted or unavailable.
// Replies stream word by word to stdout and every chunk passes through
// the same reducer the TUI uses.
func HandleChatCommand(args Args) error {
	cfg := config.Global()
	log := BuildLogger(cfg).With("repl")

	sessions, backend, err := OpenSessionStore(cfg, log)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer CloseBackend(backend)

	sess := &ReplSession{
		cfg:       cfg,
		log:       log,
		sessions:  sessions,
		state:     chat.NewState(),
		saved:     true,
		quiet:     args.Quiet,
		startTime: time.Now(),
	}

	input := NewChatCLI()
	defer input.Close()
	input.LoadHistory()
	defer input.SaveHistory()

	// Ctrl+C during streaming cancels the reply; at an idle prompt liner
	// reports it as ErrPromptAborted and the loop exits.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			sess.cancelActive()
		}
	}()

	if !sess.quiet {
		printWelcome(cfg)
	}

	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") || line == "exit" || line == "quit" {
			keepGoing, err := handleSlashCommand(sess, line)
			if err != nil {
				fmt.Println(ErrorStyle.Render("Error: " + err.Error()))
			}
			if !keepGoing {
				break
			}
			continue
		}

		if err := processMessage(sess, line); err != nil {
			fmt.Println(ErrorStyle.Render("Error: " + err.Error()))
		}
	}

	if !sess.quiet {
		printExitSummary(sess)
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand dispatches a REPL command. The returned bool is
// false when the REPL should exit.
func handleSlashCommand(sess *ReplSession, line string) (bool, error) {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.Join(parts[1:], " ")
	}

	switch cmd {
	case "/help", "/h", "/?":
		printReplHelp()

	case "/clear", "/c":
		sess.messages = nil
		sess.state = chat.ReduceAll(sess.state, chat.ResetStream{}, chat.ResetThinking{})
		sess.saved = true
		fmt.Println(DimStyle.Render("Conversation cleared."))

	case "/history":
		printReplHistory(sess)

	case "/sessions", "/ls":
		return true, printSessionList(sess.sessions)

	case "/load":
		if arg == "" {
			return true, ErrMissingArgument("session id", "/load <id>")
		}
		return true, loadReplSession(sess, arg)

	case "/save":
		return true, saveReplSession(sess)

	case "/quit", "/q", "/exit", "exit", "quit":
		return false, nil

	default:
		fmt.Println(WarningStyle.Render("Unknown command: " + cmd))
		fmt.Println(DimStyle.Render("Type /help for available commands."))
	}
	return true, nil
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage streams one assistant reply for the given input, feeding
// every chunk through the reducer. The stream source blocks on this
// goroutine; Ctrl+C cancels it through the context.
func processMessage(sess *ReplSession, text string) error {
	messageID := uuid.NewString()
	source := replSource(sess.cfg, text, messageID)

	ctx, cancel := context.WithCancel(context.Background())
	sess.setCancel(cancel)
	defer func() {
		sess.setCancel(nil)
		cancel()
	}()

	sess.state = chat.Reduce(sess.state, chat.StartStream{MessageID: messageID})

	fmt.Print(assistantStyle.Render("assistant> "))
	started := time.Now()

	streamErr := source.Stream(ctx, func(chunk stream.Chunk) {
		// Network chunk IDs are server-assigned; retag with the local
		// turn ID so the reducer matches them to this stream.
		chunk.ID = messageID

		if chunk.Delta != "" {
			streamToStdout(chunk.Delta)
			sess.state = chat.Reduce(sess.state, chat.AppendChunk{MessageID: chunk.ID, Delta: chunk.Delta})
		}
		if chunk.Done || chunk.Error != "" {
			sess.state = chat.Reduce(sess.state, chat.AppendChunk{
				MessageID: chunk.ID,
				Done:      chunk.Done,
				Error:     chunk.Error,
			})
		}
	})
	fmt.Println()

	if streamErr != nil && errors.Is(streamErr, context.Canceled) {
		// An abort is not an error: partial content stays, nothing is
		// recorded as failed.
		sess.state = chat.Reduce(sess.state, chat.CancelStream{})
		partial := sess.state.Streaming.Content
		sess.state = chat.Reduce(sess.state, chat.ResetStream{})
		fmt.Println(WarningStyle.Render("[cancelled]"))
		if partial != "" {
			sess.commitTurn(text, partial)
		}
		return nil
	}

	if streamErr != nil {
		sess.state = chat.Reduce(sess.state, chat.StreamFailed{MessageID: messageID, Message: streamErr.Error()})
		partial := sess.state.Streaming.Content
		sess.state = chat.Reduce(sess.state, chat.ResetStream{})
		if partial != "" {
			sess.commitTurn(text, partial)
		}
		return fmt.Errorf("stream failed: %w", streamErr)
	}

	if sess.state.Streaming.Failed() {
		reason := sess.state.Streaming.Error
		sess.state = chat.Reduce(sess.state, chat.ResetStream{})
		return fmt.Errorf("stream failed: %s", reason)
	}

	// A source may end at EOF without a terminal chunk; the protocol
	// allows it, so close out the stream here.
	if sess.state.Streaming.IsStreaming {
		sess.state = chat.Reduce(sess.state, chat.FinishStream{MessageID: messageID})
	}

	content := sess.state.Streaming.Content
	sess.state = chat.Reduce(sess.state, chat.ResetStream{})

	if content == "" {
		fmt.Println(WarningStyle.Render("The reply came back empty."))
		return nil
	}

	sess.commitTurn(text, content)

	if !sess.quiet {
		elapsed := time.Since(started).Round(100 * time.Millisecond)
		words := len(strings.Fields(content))
		mode := sess.cfg.Chat.Source
		if mode == "" {
			mode = "simulated"
		}
		fmt.Println(DimStyle.Render(fmt.Sprintf("%d words | %s | %s", words, elapsed, mode)))
	}
	return nil
}

// commitTurn appends the user and assistant messages to the transcript.
func (s *ReplSession) commitTurn(userText, replyText string) {
	s.messages = append(s.messages, model.NewUserMessage(userText))
	s.messages = append(s.messages, model.NewAssistantMessage(replyText))
	s.turns++
	s.saved = false
}

// replSource selects the chunk source for a REPL turn, the same way the
// TUI does: the streaming endpoint when configured, the completion
// endpoint as a single-chunk fallback, canned simulated replies
// otherwise.
func replSource(cfg *config.Config, text, messageID string) stream.Source {
	if cfg.Chat.Source == "network" {
		client := stream.NewClient(cfg.Chat.EndpointURL, cfg.Chat.StreamURL, logging.Nop())
		if cfg.Chat.RequestTimeoutSecs > 0 {
			client.SetTimeout(time.Duration(cfg.Chat.RequestTimeoutSecs) * time.Second)
		}
		if cfg.Chat.StreamURL != "" {
			return stream.NewNetworkSource(client, text)
		}
		return stream.NewCompletionSource(client, text, messageID)
	}

	reply := stream.ReplyFor(text)
	delay := time.Duration(cfg.Chat.SimulatedWordDelayMs) * time.Millisecond
	return stream.NewSimulatedSource(reply.Text, messageID, delay)
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// saveReplSession persists the transcript through the session store. The
// store dedupes by content hash, so saving twice without new messages
// reuses the stored session.
func saveReplSession(sess *ReplSession) error {
	if len(sess.messages) == 0 {
		fmt.Println(DimStyle.Render("Nothing to save yet."))
		return nil
	}
	saved, err := sess.sessions.Save(sess.messages)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	sess.saved = true
	fmt.Println(SuccessStyle.Render("Saved ") + ValueStyle.Render(saved.Title) +
		DimStyle.Render(" ("+shortSessionID(saved.ID)+")"))
	return nil
}

// loadReplSession replaces the transcript with a stored session.
func loadReplSession(sess *ReplSession, idOrPrefix string) error {
	found, err := findSession(sess.sessions, idOrPrefix)
	if err != nil {
		return err
	}
	sess.messages = append([]model.Message(nil), found.Messages...)
	sess.state = chat.ReduceAll(sess.state, chat.ResetStream{}, chat.ResetThinking{})
	sess.saved = true
	fmt.Println(SuccessStyle.Render("Loaded ") + ValueStyle.Render(found.Title) +
		DimStyle.Render(fmt.Sprintf(" (%d messages)", len(found.Messages))))
	printReplHistory(sess)
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(cfg *config.Config) {
	source := cfg.Chat.Source
	if source == "" {
		source = "simulated"
	}
	backend := cfg.Storage.Backend
	if backend == "" {
		backend = "file"
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("parley chat (plain mode)"))
	fmt.Println(RenderSeparator(40))
	fmt.Printf("%s %s\n", LabelStyle.Render("Source:"), ValueStyle.Render(source))
	fmt.Printf("%s %s\n", LabelStyle.Render("Storage:"), ValueStyle.Render(backend))
	fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func printReplHelp() {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Commands"))
	commands := []struct{ name, desc string }{
		{"/help", "show this help"},
		{"/clear", "discard the current conversation"},
		{"/history", "reprint the conversation so far"},
		{"/sessions", "list saved sessions"},
		{"/load <id>", "load a saved session (id prefix works)"},
		{"/save", "save the conversation"},
		{"/quit", "exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s %s\n", ValueStyle.Render(util.PadRight(c.name, 14)), DimStyle.Render(c.desc))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Ctrl+C cancels a streaming reply; at the prompt it exits."))
	fmt.Println()
}

// printReplHistory reprints the transcript, rendering assistant replies
// as markdown when stdout is a terminal.
func printReplHistory(sess *ReplSession) {
	if len(sess.messages) == 0 {
		fmt.Println(DimStyle.Render("No messages yet."))
		return
	}
	for _, msg := range sess.messages {
		switch msg.Role {
		case model.RoleUser:
			fmt.Println(promptStyle.Render("you> ") + msg.Content)
		case model.RoleAssistant:
			fmt.Println(assistantStyle.Render("assistant>"))
			displayResponse(msg.Content)
		}
	}
}

func printExitSummary(sess *ReplSession) {
	elapsed := time.Since(sess.startTime).Round(time.Second)
	fmt.Println()
	fmt.Println(RenderSeparator(40))
	fmt.Printf("%s %d turns, %d messages, %s\n",
		LabelStyle.Render("Session:"), sess.turns, len(sess.messages), elapsed)
	if !sess.saved && len(sess.messages) > 0 {
		fmt.Println(WarningStyle.Render("Unsaved conversation discarded (use /save next time)."))
	}
	fmt.Println(DimStyle.Render("Goodbye."))
}
