// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// DOCS COMMAND
// =============================================================================

// HandleDocsCommand dispatches the workbench document subcommands. Documents
// are small reference files kept next to the chat history: notes, snippets,
// logs to paste from.
func HandleDocsCommand(args Args) error {
	cfg := config.Global()
	log := BuildLogger(cfg)

	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer CloseBackend(backend)
	docs := storage.NewDocumentStore(backend, log)

	switch args.Subcommand {
	case "", "list":
		return listDocuments(docs, args)
	case "show":
		if args.Query == "" {
			return ErrMissingArgument("document id or name", "parley docs show <id>")
		}
		return showDocument(docs, args.Query)
	case "save":
		return saveDocument(docs, args)
	case "delete":
		if args.Query == "" {
			return ErrMissingArgument("document id or name", "parley docs delete <id> [--confirm]")
		}
		return deleteDocument(docs, args)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown docs subcommand",
			Example: "parley docs [list|show|save|delete]",
		}
	}
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func listDocuments(docs *storage.DocumentStore, args Args) error {
	all := docs.List()
	if len(all) == 0 {
		if !args.Quiet {
			fmt.Println(DimStyle.Render("No documents."))
		}
		return nil
	}

	if args.Quiet {
		for _, doc := range all {
			fmt.Println(doc.ID)
		}
		return nil
	}

	fmt.Printf("%s  %s  %s  %s\n",
		LabelStyle.Render(util.PadRight("ID", 8)),
		LabelStyle.Render(util.PadRight("NAME", 30)),
		LabelStyle.Render(util.PadRight("SIZE", 8)),
		LabelStyle.Render("UPLOADED"))
	for _, doc := range all {
		fmt.Printf("%s  %s  %s  %s\n",
			ValueStyle.Render(shortSessionID(doc.ID)),
			util.PadRight(util.TruncateWithEllipsis(doc.Name, 30), 30),
			util.PadRight(formatBytes(doc.Size), 8),
			DimStyle.Render(doc.UploadedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

func showDocument(docs *storage.DocumentStore, idOrName string) error {
	doc, err := findDocument(docs, idOrName)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render(doc.Name))
	fmt.Println(RenderSeparator(60))

	// Markdown documents render through glamour on a terminal; anything
	// else prints raw so pipes stay clean.
	ext := strings.ToLower(filepath.Ext(doc.Name))
	if ext == ".md" || ext == ".markdown" {
		displayResponse(doc.Content)
	} else {
		fmt.Println(doc.Content)
	}
	return nil
}

// saveDocument stores a document from --file or, when input is piped, from
// stdin under the given name.
func saveDocument(docs *storage.DocumentStore, args Args) error {
	var name, content string

	switch {
	case args.File != "":
		data, err := os.ReadFile(args.File)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args.File, err)
		}
		content = string(data)
		name = args.Query
		if name == "" {
			name = filepath.Base(args.File)
		}

	case !IsTTY():
		if args.Query == "" {
			return ErrMissingArgument("document name", "parley docs save <name> < input.md")
		}
		data, err := io.ReadAll(io.LimitReader(os.Stdin, storage.MaxDocumentSize+1))
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
		name = args.Query

	default:
		return ErrMissingArgument("--file", "parley docs save --file notes.md  (or pipe: parley docs save notes.md < notes.md)")
	}

	doc, err := docs.Save(name, content)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if args.Quiet {
		fmt.Println(doc.ID)
	} else {
		fmt.Println(SuccessStyle.Render("Saved ") + ValueStyle.Render(doc.Name) +
			DimStyle.Render(fmt.Sprintf(" (%s, %s)", shortSessionID(doc.ID), formatBytes(doc.Size))))
	}
	return nil
}

func deleteDocument(docs *storage.DocumentStore, args Args) error {
	doc, err := findDocument(docs, args.Query)
	if err != nil {
		return err
	}

	ok, err := ConfirmAction(fmt.Sprintf("delete document %q", doc.Name), args.Confirm)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(DimStyle.Render("Aborted."))
		return nil
	}

	if err := docs.Delete(doc.ID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	fmt.Println(SuccessStyle.Render("Deleted ") + ValueStyle.Render(doc.Name))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// findDocument resolves a document by exact ID, ID prefix, or name.
func findDocument(docs *storage.DocumentStore, idOrName string) (storage.Document, error) {
	if doc, err := docs.Get(idOrName); err == nil {
		return doc, nil
	}

	var matches []storage.Document
	for _, doc := range docs.List() {
		if strings.HasPrefix(doc.ID, idOrName) || strings.EqualFold(doc.Name, idOrName) {
			matches = append(matches, doc)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return storage.Document{}, &NotFoundError{Resource: "document", ID: idOrName}
	default:
		return storage.Document{}, &ValidationError{
			Field:   "document",
			Value:   idOrName,
			Reason:  fmt.Sprintf("matches %d documents", len(matches)),
			Example: "parley docs list",
		}
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
