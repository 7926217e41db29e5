// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stores.go - Storage backend wiring shared by the CLI handlers and main.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/storage"
)

// OpenBackend opens the storage backend selected in the configuration.
// The returned store may implement io.Closer (the SQLite backend does);
// callers own the close.
func OpenBackend(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		if cfg.Storage.Dir != "" {
			return storage.NewFileStoreWithDir(cfg.Storage.Dir)
		}
		return storage.NewFileStore()

	case "sqlite":
		dir := cfg.Storage.Dir
		if dir == "" {
			configDir, err := config.ConfigDir()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
			}
			dir = filepath.Join(configDir, "store")
		}
		return storage.NewSQLiteStore(filepath.Join(dir, "parley.db"))

	case "memory":
		return storage.NewMemStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file, sqlite, or memory)", cfg.Storage.Backend)
	}
}

// OpenSessionStore opens the session store over the configured backend.
func OpenSessionStore(cfg *config.Config, log logging.Logger) (*storage.SessionStore, storage.Store, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage backend: %w", err)
	}
	store := storage.NewSessionStore(backend, log)
	store.MaxSessions = cfg.Storage.MaxSessions
	return store, backend, nil
}

// CloseBackend closes the backend if it holds resources.
func CloseBackend(backend storage.Store) {
	if closer, ok := backend.(interface{ Close() error }); ok {
		closer.Close()
	}
}

// BuildLogger constructs the logger described by the config's logging
// section. A file target that cannot be opened falls back to stderr, so
// a bad path never silences diagnostics.
func BuildLogger(cfg *config.Config) logging.Logger {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		log, err := logging.NewFile(cfg.Logging.File, level)
		if err == nil {
			return log
		}
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.Logging.File, err)
	}
	return logging.NewStderr(level)
}
