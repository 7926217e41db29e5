// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/share"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/load <session_id>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string

	// Completer for custom completion
	Completer func() []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString   ArgType = iota // Free-form string
	ArgTypeSession                 // Session ID from saved sessions
	ArgTypeDocument                // Workbench document ID
	ArgTypeFile                    // File path
	ArgTypeEnum                    // One of predefined values
	ArgTypeConfig                  // Config key
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [quick|all|<category>]",
		Args: []ArgDef{
			{
				Name:        "mode",
				Required:    false,
				Type:        ArgTypeEnum,
				Values:      []string{"quick", "all", "navigation", "conversation", "workbench", "sharing", "settings"},
				Description: "Help mode or category",
			},
		},
		Category: "Navigation",
		Handler:  handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit parley",
		Category:    "Navigation",
		Handler:     handleQuit,
	})

	// Conversation commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the current conversation",
		Usage:       "/save [title]",
		Args: []ArgDef{
			{Name: "title", Required: false, Type: ArgTypeString, Description: "Optional title for the session"},
		},
		Category: "Conversation",
		Handler:  handleSave,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/resume"},
		Description: "Load a saved conversation",
		Usage:       "/load <session_id>",
		Args: []ArgDef{
			{Name: "session_id", Required: true, Type: ArgTypeSession, Description: "ID of the session to load"},
		},
		Category: "Conversation",
		Handler:  handleLoad,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear conversation history",
		Category:    "Conversation",
		Handler:     handleClear,
	})

	r.Register(&Command{
		Name:        "/copy",
		Description: "Copy last reply to clipboard",
		Category:    "Conversation",
		Handler:     handleCopy,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export conversation to file",
		Usage:       "/export [format] [dir]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum, Values: []string{"text", "markdown", "json", "pdf"}, Description: "Export format"},
			{Name: "dir", Required: false, Type: ArgTypeFile, Description: "Output directory"},
		},
		Category: "Conversation",
		Handler:  handleExport,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list"},
		Description: "List saved sessions",
		Category:    "Conversation",
		Handler:     handleSessions,
	})

	r.Register(&Command{
		Name:        "/search",
		Description: "Search saved sessions",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Text to search for"},
		},
		Category: "Conversation",
		Handler:  handleSearch,
	})

	r.Register(&Command{
		Name:        "/delete",
		Description: "Delete a saved session",
		Usage:       "/delete <session_id>",
		Args: []ArgDef{
			{Name: "session_id", Required: true, Type: ArgTypeSession, Description: "ID of the session to delete"},
		},
		Category: "Conversation",
		Handler:  handleDelete,
	})

	// Workbench commands
	r.Register(&Command{
		Name:        "/docs",
		Description: "List workbench documents",
		Category:    "Workbench",
		Handler:     handleDocs,
	})

	r.Register(&Command{
		Name:        "/doc",
		Description: "Save, show or delete a workbench document",
		Usage:       "/doc <save|show|delete> <title|id>",
		Args: []ArgDef{
			{Name: "action", Required: true, Type: ArgTypeEnum, Values: []string{"save", "show", "delete"}, Description: "Document operation"},
			{Name: "ref", Required: true, Type: ArgTypeDocument, Description: "Document title (save) or ID (show/delete)"},
		},
		Category: "Workbench",
		Handler:  handleDoc,
	})

	// Sharing commands
	r.Register(&Command{
		Name:        "/share",
		Description: "Publish a read-only snapshot of this conversation",
		Usage:       "/share [passphrase]",
		Args: []ArgDef{
			{Name: "passphrase", Required: false, Type: ArgTypeString, Description: "Optional passphrase to protect the snapshot"},
		},
		Category: "Sharing",
		Handler:  handleShare,
	})

	// Settings commands
	r.Register(&Command{
		Name:        "/theme",
		Description: "Change color theme",
		Usage:       "/theme [dark|light|auto]",
		Args: []ArgDef{
			{Name: "name", Required: false, Type: ArgTypeEnum, Values: []string{"dark", "light", "auto"}, Description: "Theme name"},
		},
		Category: "Settings",
		Handler:  handleTheme,
	})

	r.Register(&Command{
		Name:        "/speed",
		Description: "Set typing animation speed",
		Usage:       "/speed <1-120|instant>",
		Args: []ArgDef{
			{Name: "speed", Required: false, Type: ArgTypeString, Description: "Characters per second, or 'instant'"},
		},
		Category: "Settings",
		Handler:  handleSpeed,
	})

	r.Register(&Command{
		Name:        "/thinking",
		Description: "Toggle the thinking timeline panel",
		Usage:       "/thinking [on|off]",
		Args: []ArgDef{
			{Name: "state", Required: false, Type: ArgTypeEnum, Values: []string{"on", "off"}, Description: "Show or hide the panel"},
		},
		Category: "Settings",
		Handler:  handleThinking,
	})

	r.Register(&Command{
		Name:        "/source",
		Description: "Switch where assistant replies come from",
		Usage:       "/source <simulated|network>",
		Args: []ArgDef{
			{Name: "source", Required: true, Type: ArgTypeEnum, Values: []string{"simulated", "network"}, Description: "Reply source"},
		},
		Category: "Settings",
		Handler:  handleSource,
	})

	r.Register(&Command{
		Name:        "/config",
		Description: "Show or edit configuration",
		Usage:       "/config [key] [value]",
		Args: []ArgDef{
			{Name: "key", Required: false, Type: ArgTypeConfig, Description: "Config key to show/set"},
			{Name: "value", Required: false, Type: ArgTypeString, Description: "New value"},
		},
		Category: "Settings",
		Handler:  handleConfig,
	})

	r.Register(&Command{
		Name:        "/status",
		Description: "Show detailed status information",
		Category:    "Settings",
		Handler:     handleStatus,
	})
}

// =============================================================================
// HANDLER INDIRECTION
// =============================================================================

func handleHelp(ctx *Context, args []string) tea.Cmd {
	return HandleHelp(ctx, args)
}

func handleQuit(ctx *Context, args []string) tea.Cmd {
	return HandleQuit(ctx, args)
}

func handleNew(ctx *Context, args []string) tea.Cmd {
	return HandleNew(ctx, args)
}

func handleSave(ctx *Context, args []string) tea.Cmd {
	return HandleSave(ctx, args)
}

func handleLoad(ctx *Context, args []string) tea.Cmd {
	return HandleLoad(ctx, args)
}

func handleClear(ctx *Context, args []string) tea.Cmd {
	return HandleClear(ctx, args)
}

func handleCopy(ctx *Context, args []string) tea.Cmd {
	return HandleCopy(ctx, args)
}

func handleExport(ctx *Context, args []string) tea.Cmd {
	return HandleExport(ctx, args)
}

func handleSessions(ctx *Context, args []string) tea.Cmd {
	return HandleSessions(ctx, args)
}

func handleSearch(ctx *Context, args []string) tea.Cmd {
	return HandleSearch(ctx, args)
}

func handleDelete(ctx *Context, args []string) tea.Cmd {
	return HandleDelete(ctx, args)
}

func handleDocs(ctx *Context, args []string) tea.Cmd {
	return HandleDocs(ctx, args)
}

func handleDoc(ctx *Context, args []string) tea.Cmd {
	return HandleDoc(ctx, args)
}

func handleShare(ctx *Context, args []string) tea.Cmd {
	return HandleShare(ctx, args)
}

func handleTheme(ctx *Context, args []string) tea.Cmd {
	return HandleTheme(ctx, args)
}

func handleSpeed(ctx *Context, args []string) tea.Cmd {
	return HandleSpeed(ctx, args)
}

func handleThinking(ctx *Context, args []string) tea.Cmd {
	return HandleThinking(ctx, args)
}

func handleSource(ctx *Context, args []string) tea.Cmd {
	return HandleSource(ctx, args)
}

func handleConfig(ctx *Context, args []string) tea.Cmd {
	return HandleConfig(ctx, args)
}

func handleStatus(ctx *Context, args []string) tea.Cmd {
	return HandleStatus(ctx, args)
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// It follows the dependency injection pattern, allowing handlers to access
// services without direct coupling to the application structure.
//
// All fields are optional and may be nil - handlers should check before use.
//
// Example usage in a handler:
//
//	func HandleSessions(ctx *Context, args []string) tea.Cmd {
//	    if ctx.Sessions != nil {
//	        sessions := ctx.Sessions.List()
//	        // ...
//	    }
//	}
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Sessions handles conversation persistence
	Sessions *storage.SessionStore

	// Documents handles workbench document persistence
	Documents *storage.DocumentStore

	// Share publishes snapshots to the share server
	Share *share.Client

	// Session manages the current session runtime state
	Session *session.Manager

	// Log receives handler diagnostics
	Log logging.Logger
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(cfg *config.Config, sessions *storage.SessionStore, documents *storage.DocumentStore, shareClient *share.Client, sess *session.Manager) *Context {
	return &Context{
		Config:    cfg,
		Sessions:  sessions,
		Documents: documents,
		Share:     shareClient,
		Session:   sess,
		Log:       logging.Nop(),
	}
}

// RecordActivity records user activity in the session manager if available.
func (c *Context) RecordActivity() {
	if c.Session != nil {
		c.Session.RecordActivity()
	}
}

// logger returns the context logger, falling back to a no-op.
func (c *Context) logger() logging.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logging.Nop()
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int

	// IsCurrent indicates this is the current selection
	IsCurrent bool
}

// Label returns the text to show for the completion: the Display form when
// set, the raw Value otherwise.
func (c Completion) Label() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Value
}
