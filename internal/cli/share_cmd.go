// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/share"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// SHARE COMMAND
// =============================================================================

// HandleShareCommand dispatches the share subcommands. Snapshots publish to
// the configured share server when one is set; otherwise they land in the
// local record store, which the same commands read back.
func HandleShareCommand(args Args) error {
	cfg := config.Global()
	log := BuildLogger(cfg)

	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer CloseBackend(backend)

	local := share.NewLocalRecordStore(backend, log)
	var records share.RecordStore = local
	var client *share.Client
	if cfg.Share.ServerURL != "" {
		client = share.NewClient(cfg.Share.ServerURL, log)
		records = client
	}

	switch args.Subcommand {
	case "", "list":
		return listShares(local, client, args)
	case "create":
		if args.Query == "" {
			return ErrMissingArgument("session id", "parley share create <session-id> [--protect]")
		}
		sessions := storage.NewSessionStore(backend, log)
		return createShare(sessions, records, client, args)
	case "show", "fetch":
		if args.Query == "" {
			return ErrMissingArgument("share id", "parley share show <id>")
		}
		return fetchShare(local, records, client != nil, args)
	case "delete":
		if args.Query == "" {
			return ErrMissingArgument("share id", "parley share delete <id>")
		}
		return deleteShare(local, client, args)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown share subcommand",
			Example: "parley share [list|create|show|delete]",
		}
	}
}

// =============================================================================
// LIST
// =============================================================================

func listShares(local *share.LocalRecordStore, client *share.Client, args Args) error {
	snaps := local.List()
	if len(snaps) == 0 {
		if !args.Quiet {
			fmt.Println(DimStyle.Render("No local share records."))
			if client != nil {
				fmt.Println(DimStyle.Render("Published snapshots live on the share server."))
			}
		}
		return nil
	}

	if args.Quiet {
		for _, snap := range snaps {
			fmt.Println(snap.ID)
		}
		return nil
	}

	fmt.Printf("%s  %s  %s  %s  %s\n",
		LabelStyle.Render(util.PadRight("ID", 8)),
		LabelStyle.Render(util.PadRight("TITLE", 32)),
		LabelStyle.Render(util.PadRight("VIEWS", 5)),
		LabelStyle.Render(util.PadRight("LOCK", 4)),
		LabelStyle.Render("CREATED"))
	for _, snap := range snaps {
		lock := "-"
		if snap.Protected() {
			lock = "yes"
		}
		fmt.Printf("%s  %s  %s  %s  %s\n",
			ValueStyle.Render(shortSessionID(snap.ID)),
			util.PadRight(util.TruncateWithEllipsis(snap.Title, 32), 32),
			util.PadRight(fmt.Sprintf("%d", snap.Views), 5),
			util.PadRight(lock, 4),
			DimStyle.Render(snap.CreatedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

// =============================================================================
// CREATE
// =============================================================================

func createShare(sessions *storage.SessionStore, records share.RecordStore, client *share.Client, args Args) error {
	sess, err := findSession(sessions, args.Query)
	if err != nil {
		return err
	}

	passphrase := ""
	if args.Protect {
		passphrase, err = promptNewPassphrase()
		if err != nil {
			return err
		}
	}

	snap, err := share.NewSnapshot(&sess, passphrase)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	if err := records.Create(snap); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}

	if args.Quiet {
		fmt.Println(snap.ID)
		return nil
	}

	fmt.Println(SuccessStyle.Render("Shared ") + ValueStyle.Render(snap.Title))
	if client != nil {
		fmt.Printf("%s %s\n", LabelStyle.Render("URL:"), ValueStyle.Render(client.ShareURL(snap.ID)))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("ID:"), ValueStyle.Render(snap.ID))
		fmt.Println(DimStyle.Render("View it with: parley share show " + shortSessionID(snap.ID)))
	}
	if snap.Protected() {
		fmt.Println(DimStyle.Render("Viewers will need the passphrase."))
	}
	return nil
}

// promptNewPassphrase reads a protection passphrase twice and requires the
// entries to match. The passphrase never echoes and never leaves the
// machine; only its argon2id hash travels with the snapshot.
func promptNewPassphrase() (string, error) {
	pass, err := ReadPassphrase("Passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", &ValidationError{
			Field:  "passphrase",
			Reason: "cannot be empty",
		}
	}
	confirm, err := ReadPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", &ValidationError{
			Field:  "passphrase",
			Reason: "entries do not match",
		}
	}
	return pass, nil
}

// =============================================================================
// FETCH
// =============================================================================

func fetchShare(local *share.LocalRecordStore, records share.RecordStore, remote bool, args Args) error {
	id := args.Query
	// Local records allow ID prefixes; the server contract takes exact IDs.
	if !remote {
		if resolved, err := resolveLocalShareID(local, id); err == nil {
			id = resolved
		}
	}

	snap, err := records.Fetch(id)
	if err != nil {
		if errors.Is(err, share.ErrShareNotFound) {
			return &NotFoundError{Resource: "share", ID: args.Query}
		}
		return fmt.Errorf("fetching snapshot: %w", err)
	}

	if snap.Protected() {
		pass, err := ReadPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		if !snap.Unlock(pass) {
			return fmt.Errorf("passphrase does not match")
		}
	}

	views, err := records.IncrementViews(snap.ID)
	if err != nil {
		views = snap.Views
	}

	fmt.Println(TitleStyle.Render(snap.Title))
	fmt.Println(RenderSeparator(60))
	fmt.Printf("%s %s\n", LabelStyle.Render("Created:"), ValueStyle.Render(snap.CreatedAt.Format("2006-01-02 15:04:05")))
	fmt.Printf("%s %d\n", LabelStyle.Render("Views:"), views)
	fmt.Println()

	for _, msg := range snap.Messages {
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

// resolveLocalShareID expands a unique ID prefix against the local records.
func resolveLocalShareID(local *share.LocalRecordStore, idOrPrefix string) (string, error) {
	var matches []string
	for _, snap := range local.List() {
		if snap.ID == idOrPrefix {
			return snap.ID, nil
		}
		if strings.HasPrefix(snap.ID, idOrPrefix) {
			matches = append(matches, snap.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", share.ErrShareNotFound
}

// =============================================================================
// DELETE
// =============================================================================

func deleteShare(local *share.LocalRecordStore, client *share.Client, args Args) error {
	// Remote deletion is the admin operation: the server checks a TOTP
	// code minted from its configured secret.
	if client != nil {
		code := ""
		if len(args.Raw) > 0 {
			code = args.Raw[0]
		}
		if code == "" {
			if !IsTTY() {
				return &TTYRequiredError{Operation: "prompting for the admin code"}
			}
			fmt.Fprint(os.Stderr, "Admin TOTP code: ")
			fmt.Fscanln(os.Stdin, &code)
			code = strings.TrimSpace(code)
		}
		if code == "" {
			return ErrMissingArgument("admin code", "parley share delete <id> <totp-code>")
		}
		if err := client.Delete(args.Query, code); err != nil {
			return fmt.Errorf("deleting remote snapshot: %w", err)
		}
		fmt.Println(SuccessStyle.Render("Deleted ") + ValueStyle.Render(args.Query))
		return nil
	}

	id, err := resolveLocalShareID(local, args.Query)
	if err != nil {
		return &NotFoundError{Resource: "share", ID: args.Query}
	}

	ok, err := ConfirmAction(fmt.Sprintf("delete share %s", shortSessionID(id)), args.Confirm)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(DimStyle.Render("Aborted."))
		return nil
	}

	if err := local.Delete(id); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	fmt.Println(SuccessStyle.Render("Deleted ") + ValueStyle.Render(shortSessionID(id)))
	return nil
}
