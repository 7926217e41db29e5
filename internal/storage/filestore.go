// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore implements Store with one JSON file per key in a directory.
type FileStore struct {
	// BaseDir is the directory holding one file per key.
	// Default: ~/.parley/store/
	BaseDir string
}

// NewFileStore creates a file-backed store under the user's home directory.
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreWithDir(filepath.Join(homeDir, ".parley", "store"))
}

// NewFileStoreWithDir creates a file-backed store in a custom directory.
func NewFileStoreWithDir(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Set stores value under key.
// RELIABILITY: the atomic write with fsync prevents torn values on crash.
func (s *FileStore) Set(key, value string) error {
	return util.AtomicWriteFile(s.filePath(key), []byte(value), 0644)
}

// Remove deletes the value under key. Absent keys are not an error.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close implements Store. File handles are not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// filePath maps a key to its backing file.
func (s *FileStore) filePath(key string) string {
	return filepath.Join(s.BaseDir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps keys filesystem-safe. SECURITY: path separators and
// dot segments must never escape the base directory.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	out := r.Replace(key)
	if out == "" {
		out = "_empty"
	}
	return out
}
