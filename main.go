// parley - a terminal chat front end with streaming replies, a thinking
// timeline, persisted sessions, exporters and shareable snapshots.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/cli"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/share"
	"github.com/jeranaias/parley/internal/storage"
	chatui "github.com/jeranaias/parley/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)

	case cli.CmdChat:
		// --plain gets the readline REPL; otherwise chat is the TUI.
		if args.Plain {
			run(cli.HandleChatCommand, args)
		} else {
			runTUI(args)
		}

	case cli.CmdSessions:
		run(cli.HandleSessionsCommand, args)

	case cli.CmdDocs:
		run(cli.HandleDocsCommand, args)

	case cli.CmdShare:
		run(cli.HandleShareCommand, args)

	case cli.CmdServe:
		run(cli.HandleServeCommand, args)

	case cli.CmdConfig:
		run(cli.HandleConfigCommand, args)

	case cli.CmdVersion:
		cli.HandleVersion()

	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// run executes a command handler, printing the error once and exiting with
// a code derived from its type.
func run(handler func(cli.Args) error, args cli.Args) {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI wires and runs the full-screen interface: config, logging, the
// stores, the autosave session manager, the optional share client, and
// the config hot-reload watcher.
func runTUI(args cli.Args) {
	if !cli.IsTTY() {
		fmt.Fprintln(os.Stderr, "Error: the TUI needs a terminal; use `parley chat --plain` for piped sessions")
		os.Exit(cli.ExitUsageError)
	}

	cfg := config.Global()
	log := tuiLogger(cfg)

	sessions, backend, err := cli.OpenSessionStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
	documents := storage.NewDocumentStore(backend, log)

	var shareClient *share.Client
	if cfg.Share.ServerURL != "" {
		shareClient = share.NewClient(cfg.Share.ServerURL, log)
	}

	mgr := session.NewManager(sessions, session.Config{
		AutoSaveEnabled:  cfg.Storage.AutosaveSecs > 0,
		AutoSaveInterval: time.Duration(cfg.Storage.AutosaveSecs) * time.Second,
	}, log)

	// Config hot reload: edits to config.toml land in the running UI.
	reloads := make(chan *config.Config, 1)
	watcher := startConfigWatcher(log, reloads)

	m := chatui.New(chatui.Deps{
		Config:    cfg,
		Log:       log,
		Sessions:  sessions,
		Documents: documents,
		Share:     shareClient,
		Session:   mgr,
		Reloads:   reloads,
		Version:   Version,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	if watcher != nil {
		watcher.Close()
	}

	// A conversation still dirty at exit gets one final save.
	if mgr.IsDirty() {
		if _, saveErr := mgr.Save(); saveErr != nil {
			log.Warnf("exit save failed: %v", saveErr)
		}
	}
	cli.CloseBackend(backend)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(cli.ExitGeneralError)
	}
}

// startConfigWatcher begins watching the config file, pushing freshly
// loaded configs at the UI. Returns nil when watching is unavailable;
// the UI runs fine without hot reload.
func startConfigWatcher(log logging.Logger, reloads chan<- *config.Config) *config.FsnotifyWatcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}

	watcher, err := config.NewFsnotifyWatcher(path, 500*time.Millisecond, func(fresh *config.Config) {
		config.SetGlobal(fresh)
		select {
		case reloads <- fresh:
		default:
			// The UI is behind; the next change re-queues.
		}
	})
	if err != nil {
		log.Warnf("config watcher unavailable: %v", err)
		return nil
	}
	if err := watcher.Watch(); err != nil {
		log.Warnf("config watcher failed to start: %v", err)
		return nil
	}
	return watcher
}

// tuiLogger builds the TUI logger. With no log file configured it stays
// silent, since stderr writes would tear the alternate screen.
func tuiLogger(cfg *config.Config) logging.Logger {
	if cfg.Logging.File == "" {
		return logging.Nop()
	}
	log, err := logging.NewFile(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		return logging.Nop()
	}
	return log
}
