// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for parley.
package cli

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSessions
	CmdDocs
	CmdShare
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool

	// Command-specific
	Plain      bool   // chat: use the readline REPL instead of the TUI
	Subcommand string // first positional after the command
	Query      string // free-text argument (search query, document name)
	Format     string // export format (text, markdown, json, pdf)
	Output     string // output directory or file override
	File       string // input file (docs save)
	Confirm    bool   // destructive-action confirmation
	Protect    bool   // share create: passphrase-protect the snapshot

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `parley - terminal chat with streaming, sessions, export and share

Parley is a chat front end for the terminal. Replies stream in token by
token with a visible thinking timeline; conversations persist locally and
can be exported or shared as read-only snapshots.

Usage:
  parley                      Start the TUI (default)
  parley chat [--plain]       Chat; --plain runs the readline REPL
  parley sessions [subcmd]    Manage saved sessions
  parley docs [subcmd]        Manage workbench documents
  parley share [subcmd]       Publish or fetch share snapshots
  parley serve                Run the share snapshot server
  parley config [subcmd]      Configuration
  parley version              Show version information
  parley help                 Show this help

Session Commands:
  parley sessions list              List all saved sessions
  parley sessions show <id>         Show a session transcript
  parley sessions search <query>    Search titles and message bodies
  parley sessions export <id>       Export a session transcript
    --format text|markdown|json|pdf Export format (default: markdown)
    --output DIR                    Write into DIR instead of the export dir
  parley sessions rename <id> <title>  Rename a session
  parley sessions delete <id>       Delete a session
    --confirm                       Skip the interactive prompt
  parley sessions delete-all        Delete every stored session
    --confirm                       Skip the interactive prompt

Document Commands:
  parley docs list                  List workbench documents
  parley docs show <id>             Print a document
  parley docs save <name>           Save a document (stdin or --file)
    --file PATH                     Read content from PATH
  parley docs delete <id>           Delete a document

Share Commands:
  parley share list                 List local share records
  parley share create <session-id>  Publish a session snapshot
    --protect                       Passphrase-protect the snapshot
  parley share show <id>            Fetch and print a snapshot
  parley share delete <id> [code]   Delete a snapshot (remote needs a TOTP code)
  parley serve                      Serve snapshots over HTTP

Config Commands:
  parley config show                Show the effective configuration
  parley config path                Print the config file path
  parley config init                Write a default config file
  parley config set <key> <value>   Set one configuration value
  parley config get <key>           Print one configuration value
  parley config keys                List settable keys

Global Flags:
  -q, --quiet     Minimal output
      --verbose   Debug output

Examples:
  parley                                  Start the TUI
  parley chat --plain                     Readline chat without the TUI
  parley sessions export 1a2b --format markdown
  parley sessions search "rollout plan"
  parley docs save notes --file notes.md
  parley share create 1a2b --protect
  parley serve

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("parley version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No remaining args: default to the TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "session", "sessions":
		parseSessionsArgs(&parsedArgs, remaining)
		return CmdSessions, parsedArgs

	case "doc", "docs":
		parseDocsArgs(&parsedArgs, remaining)
		return CmdDocs, parsedArgs

	case "share", "shares":
		parseShareArgs(&parsedArgs, remaining)
		return CmdShare, parsedArgs

	case "serve", "server":
		return CmdServe, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: restore it and fall back to the TUI, matching the
		// behavior of running parley with no arguments.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for _, arg := range remaining {
		switch arg {
		case "--plain", "--repl", "--no-tui":
			args.Plain = true
		}
	}
}

// parseSessionsArgs parses sessions command specific arguments.
func parseSessionsArgs(args *Args, remaining []string) {
	var positional []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch {
		case arg == "--format":
			if i+1 < len(remaining) {
				i++
				args.Format = strings.ToLower(remaining[i])
			}
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.ToLower(strings.TrimPrefix(arg, "--format="))
		case arg == "--output", arg == "-o":
			if i+1 < len(remaining) {
				i++
				args.Output = remaining[i]
			}
		case strings.HasPrefix(arg, "--output="):
			args.Output = strings.TrimPrefix(arg, "--output=")
		case arg == "--confirm":
			args.Confirm = true
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
	}
	if len(positional) > 1 {
		// search takes the whole tail as the query; everything else takes
		// a single session ID with any extra words (rename's new title)
		// carried in Raw.
		if args.Subcommand == "search" {
			args.Query = strings.Join(positional[1:], " ")
		} else {
			args.Query = positional[1]
			args.Raw = positional[2:]
		}
	}
}

// parseDocsArgs parses docs command specific arguments.
func parseDocsArgs(args *Args, remaining []string) {
	var positional []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch {
		case arg == "--file", arg == "-f":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case strings.HasPrefix(arg, "--file="):
			args.File = strings.TrimPrefix(arg, "--file=")
		case arg == "--confirm":
			args.Confirm = true
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
	}
	if len(positional) > 1 {
		args.Query = positional[1]
	}
}

// parseShareArgs parses share command specific arguments.
func parseShareArgs(args *Args, remaining []string) {
	var positional []string

	for _, arg := range remaining {
		switch {
		case arg == "--protect":
			args.Protect = true
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
	}
	if len(positional) > 1 {
		args.Query = positional[1]
		args.Raw = positional[2:]
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	var positional []string
	for _, arg := range remaining {
		if arg == "--confirm" {
			args.Confirm = true
			continue
		}
		positional = append(positional, arg)
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
	}
	if len(positional) > 1 {
		args.Query = positional[1]
	}
	if len(positional) > 2 {
		// set takes the value as the remaining words.
		args.Raw = positional[2:]
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
