// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/parley/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfigCommand dispatches the config subcommands: inspecting,
// initializing and editing ~/.parley/config.toml from the command line.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		// String() redacts the TOTP secret, so showing the config is
		// safe to paste into bug reports.
		fmt.Println(config.Global().String())
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		fmt.Println(path)
		return nil

	case "init":
		return initConfig(args)

	case "get":
		if args.Query == "" {
			return ErrMissingArgument("key", "parley config get <key>  (see: parley config keys)")
		}
		value, err := config.Global().Get(args.Query)
		if err != nil {
			return &NotFoundError{Resource: "config key", ID: args.Query}
		}
		fmt.Printf("%v\n", value)
		return nil

	case "set":
		if args.Query == "" || len(args.Raw) == 0 {
			return ErrMissingArgument("key and value", "parley config set <key> <value>")
		}
		return setConfigValue(args.Query, strings.Join(args.Raw, " "))

	case "keys", "list":
		for _, key := range config.GetAllKeys() {
			fmt.Println(key)
		}
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "parley config [show|path|init|get|set|keys]",
		}
	}
}

// initConfig writes a fresh default config file. An existing file is only
// overwritten with --confirm.
func initConfig(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil && !args.Confirm {
		fmt.Println(WarningStyle.Render("Config already exists: ") + ValueStyle.Render(path))
		fmt.Println(DimStyle.Render("Re-run with --confirm to overwrite it with defaults."))
		return nil
	}

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := config.Save(config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Println(SuccessStyle.Render("Wrote ") + ValueStyle.Render(path))
	return nil
}

// setConfigValue loads the config fresh from disk, applies one change and
// saves it back, so concurrent edits from a running TUI are not clobbered
// by a stale in-memory copy.
func setConfigValue(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{
			Field:   key,
			Value:   value,
			Reason:  err.Error(),
			Example: "parley config keys",
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	updated, err := cfg.Get(key)
	if err == nil {
		fmt.Println(SuccessStyle.Render("Set ") + ValueStyle.Render(key) +
			DimStyle.Render(" = ") + ValueStyle.Render(fmt.Sprintf("%v", updated)))
	}
	return nil
}
