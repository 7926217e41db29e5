// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// HandleSessionsCommand dispatches the sessions subcommands: listing,
// inspecting, searching, exporting, renaming and deleting saved chats.
func HandleSessionsCommand(args Args) error {
	cfg := config.Global()
	store, backend, err := OpenSessionStore(cfg, BuildLogger(cfg))
	if err != nil {
		return err
	}
	defer CloseBackend(backend)

	switch args.Subcommand {
	case "", "list":
		return listSessions(store, args)
	case "show":
		if args.Query == "" {
			return ErrMissingArgument("session id", "parley sessions show <id>")
		}
		return showSession(store, args.Query)
	case "search":
		if args.Query == "" {
			return ErrMissingArgument("query", "parley sessions search <query>")
		}
		return searchSessions(store, args.Query)
	case "export":
		if args.Query == "" {
			return ErrMissingArgument("session id", "parley sessions export <id> [--format markdown]")
		}
		return exportSession(cfg, store, args)
	case "rename":
		if args.Query == "" || len(args.Raw) == 0 {
			return ErrMissingArgument("session id and title", "parley sessions rename <id> <new title>")
		}
		return renameSession(store, args.Query, strings.Join(args.Raw, " "))
	case "delete":
		if args.Query == "" {
			return ErrMissingArgument("session id", "parley sessions delete <id> [--confirm]")
		}
		return deleteSession(store, args)
	case "delete-all", "clear":
		return deleteAllSessions(store, args)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown sessions subcommand",
			Example: "parley sessions [list|show|search|export|rename|delete|delete-all]",
		}
	}
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

func listSessions(store *storage.SessionStore, args Args) error {
	sessions := store.List()
	if len(sessions) == 0 {
		if !args.Quiet {
			fmt.Println(DimStyle.Render("No saved sessions."))
		}
		return nil
	}

	// Quiet mode prints bare IDs for scripting.
	if args.Quiet {
		for _, sess := range sessions {
			fmt.Println(sess.ID)
		}
		return nil
	}

	printSessionTable(sessions)
	return nil
}

func searchSessions(store *storage.SessionStore, query string) error {
	matches := store.Search(query)
	if len(matches) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("No sessions match %q.", query)))
		return nil
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("%d match(es) for %q", len(matches), query)))
	printSessionTable(matches)
	return nil
}

// printSessionList is the /sessions REPL command: the same table the
// sessions command prints.
func printSessionList(store *storage.SessionStore) error {
	sessions := store.List()
	if len(sessions) == 0 {
		fmt.Println(DimStyle.Render("No saved sessions."))
		return nil
	}
	printSessionTable(sessions)
	return nil
}

func printSessionTable(sessions []model.Session) {
	fmt.Printf("%s  %s  %s  %s\n",
		LabelStyle.Render(util.PadRight("ID", 8)),
		LabelStyle.Render(util.PadRight("TITLE", 36)),
		LabelStyle.Render(util.PadRight("MSGS", 4)),
		LabelStyle.Render("UPDATED"))
	for _, sess := range sessions {
		title := util.TruncateWithEllipsis(sess.Title, 36)
		fmt.Printf("%s  %s  %s  %s\n",
			ValueStyle.Render(shortSessionID(sess.ID)),
			util.PadRight(title, 36),
			util.PadRight(fmt.Sprintf("%d", sess.MessageCount), 4),
			DimStyle.Render(sess.Timestamp.Format("2006-01-02 15:04")))
	}
}

// =============================================================================
// SHOW
// =============================================================================

func showSession(store *storage.SessionStore, idOrPrefix string) error {
	sess, err := findSession(store, idOrPrefix)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render(sess.Title))
	fmt.Println(RenderSeparator(60))
	fmt.Printf("%s %s\n", LabelStyle.Render("ID:"), ValueStyle.Render(sess.ID))
	fmt.Printf("%s %s\n", LabelStyle.Render("Updated:"), ValueStyle.Render(sess.Timestamp.Format("2006-01-02 15:04:05")))
	fmt.Printf("%s %d\n", LabelStyle.Render("Messages:"), sess.MessageCount)
	fmt.Println()

	for _, msg := range sess.Messages {
		switch msg.Role {
		case model.RoleUser:
			fmt.Println(promptStyle.Render(msg.Role.DisplayName()+": ") + msg.Content)
		case model.RoleAssistant:
			fmt.Println(assistantStyle.Render(msg.Role.DisplayName() + ":"))
			displayResponse(msg.Content)
		}
		fmt.Println()
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

func exportSession(cfg *config.Config, store *storage.SessionStore, args Args) error {
	sess, err := findSession(store, args.Query)
	if err != nil {
		return err
	}

	format := args.Format
	if format == "" {
		format = "markdown"
	}

	opts := &export.Options{
		OutputDir:         cfg.Export.OutputDir,
		OpenAfterExport:   cfg.Export.OpenAfterExport,
		IncludeMetadata:   cfg.Export.IncludeMetadata,
		IncludeTimestamps: cfg.Export.IncludeTimestamps,
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if args.Output != "" {
		opts.OutputDir = args.Output
	}

	exporter, err := export.For(format, opts)
	if err != nil {
		return ErrUnsupportedFormat(format, export.Formats())
	}

	path, err := export.ExportToFile(&sess, exporter, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if args.Quiet {
		fmt.Println(path)
	} else {
		fmt.Println(SuccessStyle.Render("Exported ") + ValueStyle.Render(sess.Title) +
			DimStyle.Render(" to ") + ValueStyle.Render(path))
	}
	return nil
}

// =============================================================================
// RENAME AND DELETE
// =============================================================================

func renameSession(store *storage.SessionStore, idOrPrefix, title string) error {
	sess, err := findSession(store, idOrPrefix)
	if err != nil {
		return err
	}
	if err := store.Rename(sess.ID, title); err != nil {
		return fmt.Errorf("renaming session: %w", err)
	}
	fmt.Println(SuccessStyle.Render("Renamed ") + DimStyle.Render(shortSessionID(sess.ID)) +
		DimStyle.Render(" to ") + ValueStyle.Render(title))
	return nil
}

func deleteSession(store *storage.SessionStore, args Args) error {
	sess, err := findSession(store, args.Query)
	if err != nil {
		return err
	}

	ok, err := ConfirmAction(fmt.Sprintf("delete session %q", sess.Title), args.Confirm)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(DimStyle.Render("Aborted."))
		return nil
	}

	if err := store.Delete(sess.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	fmt.Println(SuccessStyle.Render("Deleted ") + ValueStyle.Render(sess.Title))
	return nil
}

func deleteAllSessions(store *storage.SessionStore, args Args) error {
	count := len(store.List())
	if count == 0 {
		fmt.Println(DimStyle.Render("No sessions to delete."))
		return nil
	}

	ok, err := ConfirmAction(fmt.Sprintf("delete all %d sessions", count), args.Confirm)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(DimStyle.Render("Aborted."))
		return nil
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Deleted %d session(s).", count)))
	return nil
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// findSession resolves a session by exact ID or unique ID prefix.
func findSession(store *storage.SessionStore, idOrPrefix string) (model.Session, error) {
	if sess, err := store.Get(idOrPrefix); err == nil {
		return sess, nil
	}

	var matches []model.Session
	for _, sess := range store.List() {
		if strings.HasPrefix(sess.ID, idOrPrefix) {
			matches = append(matches, sess)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Session{}, &NotFoundError{Resource: "session", ID: idOrPrefix}
	default:
		return model.Session{}, &ValidationError{
			Field:   "session id",
			Value:   idOrPrefix,
			Reason:  fmt.Sprintf("prefix matches %d sessions", len(matches)),
			Example: "parley sessions list",
		}
	}
}

// shortSessionID trims a session ID for table display.
func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
