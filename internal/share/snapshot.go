// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package share publishes read-only snapshots of chat sessions.
//
// A snapshot is an immutable copy of a session's messages taken at share
// time. Later edits to the session never leak into an already published
// share. Snapshots live behind the RecordStore contract, which has a local
// implementation for offline use and an HTTP client/server pair for
// publishing across machines.
package share

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/parley/internal/model"
)

// Passphrase hashing parameters.
//
// SECURITY: PBKDF2-SHA256 with 600,000 iterations per OWASP 2023
// recommendations. The salt is unique per snapshot.
const (
	PassphraseIterations = 600000
	PassphraseSaltSize   = 32
	PassphraseKeySize    = 32

	passphraseScheme = "pbkdf2-sha256"
)

// Snapshot is a frozen, shareable copy of a chat session.
//
// The passphrase itself never leaves the sharing machine. Only the hash
// travels with the snapshot, and viewers verify locally before displaying
// the messages.
type Snapshot struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	CreatedAt      time.Time       `json:"createdAt"`
	Views          int             `json:"views"`
	Messages       []model.Message `json:"messages"`
	PassphraseHash string          `json:"passphraseHash,omitempty"`
}

// NewSnapshot freezes a session into a shareable snapshot. If passphrase is
// non-empty the snapshot is protected and viewers must supply the passphrase.
func NewSnapshot(sess *model.Session, passphrase string) (Snapshot, error) {
	if sess == nil || len(sess.Messages) == 0 {
		return Snapshot{}, ErrEmptySnapshot
	}

	// Deep copy so the snapshot stays frozen even if the session keeps going.
	messages := make([]model.Message, len(sess.Messages))
	copy(messages, sess.Messages)

	snap := Snapshot{
		ID:        uuid.NewString(),
		Title:     sess.Title,
		CreatedAt: time.Now(),
		Messages:  messages,
	}
	if snap.Title == "" {
		snap.Title = model.DefaultTitle
	}

	if passphrase != "" {
		hash, err := HashPassphrase(passphrase)
		if err != nil {
			return Snapshot{}, fmt.Errorf("hashing passphrase: %w", err)
		}
		snap.PassphraseHash = hash
	}

	return snap, nil
}

// Protected reports whether viewing the snapshot requires a passphrase.
func (s *Snapshot) Protected() bool {
	return s.PassphraseHash != ""
}

// Unlock reports whether the given passphrase grants access to the snapshot.
// Unprotected snapshots are always accessible.
func (s *Snapshot) Unlock(passphrase string) bool {
	if !s.Protected() {
		return true
	}
	return VerifyPassphrase(s.PassphraseHash, passphrase)
}

// Validate checks that the snapshot is complete enough to store.
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("share: snapshot has no ID")
	}
	if len(s.Messages) == 0 {
		return ErrEmptySnapshot
	}
	return nil
}

// HashPassphrase derives a salted hash for a share passphrase.
//
// Format: pbkdf2-sha256$<iterations>$<base64 salt>$<base64 key>
func HashPassphrase(passphrase string) (string, error) {
	salt := make([]byte, PassphraseSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, PassphraseIterations, PassphraseKeySize, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		passphraseScheme,
		PassphraseIterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassphrase checks a passphrase against a stored hash. Malformed
// hashes verify as false rather than erroring, so a corrupted record can
// never be unlocked by accident.
func VerifyPassphrase(encoded, passphrase string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != passphraseScheme {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	derived := pbkdf2.Key([]byte(passphrase), salt, iterations, len(expected), sha256.New)

	// SECURITY: constant-time comparison prevents timing side channels.
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
