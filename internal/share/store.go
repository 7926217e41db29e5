// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/storage"
)

// Sentinel errors for record store operations.
var (
	// ErrShareNotFound is returned when no snapshot exists for an ID.
	ErrShareNotFound = errors.New("share: snapshot not found")

	// ErrEmptySnapshot is returned when sharing a session with no messages.
	ErrEmptySnapshot = errors.New("share: cannot share an empty session")
)

// RecordStore is the minimal contract for publishing snapshots. The rest of
// the application only sees these three capabilities, so a local store and a
// remote HTTP server are interchangeable.
type RecordStore interface {
	// Create stores a new snapshot record.
	Create(snap Snapshot) error

	// Fetch retrieves a snapshot by ID. Returns ErrShareNotFound if no
	// record exists.
	Fetch(id string) (Snapshot, error)

	// IncrementViews bumps the view counter for a snapshot and returns the
	// new count. Returns ErrShareNotFound if no record exists.
	IncrementViews(id string) (int, error)
}

// LocalRecordStore keeps snapshots in a storage backend. It backs the
// offline share workflow and the share server's persistence.
type LocalRecordStore struct {
	mu    sync.Mutex
	store storage.Store
	log   logging.Logger
}

// NewLocalRecordStore creates a record store over the given backend.
func NewLocalRecordStore(store storage.Store, log logging.Logger) *LocalRecordStore {
	if log == nil {
		log = logging.Nop()
	}
	return &LocalRecordStore{
		store: store,
		log:   log.With("share"),
	}
}

// Create stores a snapshot. The snapshot must validate and its ID must not
// collide with an existing record.
func (l *LocalRecordStore) Create(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.load()
	if _, exists := records[snap.ID]; exists {
		return fmt.Errorf("share: snapshot %s already exists", snap.ID)
	}
	records[snap.ID] = snap

	if err := l.persist(records); err != nil {
		return err
	}

	l.log.Infof("snapshot created | id=%s messages=%d protected=%v",
		snap.ID, len(snap.Messages), snap.Protected())
	return nil
}

// Fetch retrieves a snapshot by ID.
func (l *LocalRecordStore) Fetch(id string) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, ok := l.load()[id]
	if !ok {
		return Snapshot{}, ErrShareNotFound
	}
	return snap, nil
}

// IncrementViews bumps the view counter and returns the new count.
func (l *LocalRecordStore) IncrementViews(id string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.load()
	snap, ok := records[id]
	if !ok {
		return 0, ErrShareNotFound
	}

	snap.Views++
	records[id] = snap

	if err := l.persist(records); err != nil {
		return 0, err
	}
	return snap.Views, nil
}

// Delete removes a snapshot record. Returns ErrShareNotFound if no record
// exists for the ID.
func (l *LocalRecordStore) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.load()
	if _, ok := records[id]; !ok {
		return ErrShareNotFound
	}
	delete(records, id)

	if err := l.persist(records); err != nil {
		return err
	}

	l.log.Infof("snapshot deleted | id=%s", id)
	return nil
}

// List returns all stored snapshots in unspecified order.
func (l *LocalRecordStore) List() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.load()
	out := make([]Snapshot, 0, len(records))
	for _, snap := range records {
		out = append(out, snap)
	}
	return out
}

// load reads all records from the backend. A missing key or corrupt payload
// yields an empty map so publishing stays available.
func (l *LocalRecordStore) load() map[string]Snapshot {
	raw, err := l.store.Get(storage.KeyShares)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			l.log.Warnf("failed to read share records: %v", err)
		}
		return make(map[string]Snapshot)
	}

	var records map[string]Snapshot
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.log.Warnf("share records corrupt, starting fresh: %v", err)
		return make(map[string]Snapshot)
	}
	if records == nil {
		records = make(map[string]Snapshot)
	}
	return records
}

// persist writes all records back to the backend.
func (l *LocalRecordStore) persist(records map[string]Snapshot) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding share records: %w", err)
	}
	if err := l.store.Set(storage.KeyShares, string(data)); err != nil {
		return fmt.Errorf("saving share records: %w", err)
	}
	return nil
}
