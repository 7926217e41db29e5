// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/parley/internal/logging"
)

// =============================================================================
// DOCUMENT VALIDATION
// =============================================================================

// MaxDocumentSize caps uploaded workbench documents at 1MB. Documents are
// held in a single JSON blob, so oversized uploads would bloat every
// subsequent load.
const MaxDocumentSize = 1 << 20

// allowedDocumentExts lists the plain-text formats the workbench accepts.
var allowedDocumentExts = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".json":     true,
	".csv":      true,
	".log":      true,
	".yaml":     true,
	".yml":      true,
}

// ErrDocumentNotFound is returned when a document doesn't exist.
var ErrDocumentNotFound = &StoreError{Message: "document not found"}

// ValidateDocument checks an upload before any side effects. It returns a
// user-facing error for unsupported types or oversized content.
func ValidateDocument(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedDocumentExts[ext] {
		return &StoreError{Message: fmt.Sprintf("unsupported document type %q", ext)}
	}
	if size > MaxDocumentSize {
		return &StoreError{Message: fmt.Sprintf("document too large: %d bytes (max %d)", size, MaxDocumentSize)}
	}
	return nil
}

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Document is a workbench reference document kept alongside chats.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// =============================================================================
// DOCUMENT STORE
// =============================================================================

// DocumentStore persists workbench documents as a map under KeyDocuments.
type DocumentStore struct {
	store Store
	log   logging.Logger
}

// NewDocumentStore creates a document store over the given backend.
func NewDocumentStore(store Store, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.Nop()
	}
	return &DocumentStore{store: store, log: log.With("documents")}
}

// Load returns all stored documents keyed by ID. Parse failures degrade to
// an empty map.
func (d *DocumentStore) Load() map[string]Document {
	raw, err := d.store.Get(KeyDocuments)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			d.log.Warnf("failed to read documents: %v", err)
		}
		return map[string]Document{}
	}

	var docs map[string]Document
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		d.log.Warnf("stored documents unreadable, starting empty: %v", err)
		return map[string]Document{}
	}
	if docs == nil {
		docs = map[string]Document{}
	}
	return docs
}

// Save validates and stores a document, assigning an ID and upload time.
func (d *DocumentStore) Save(name, content string) (Document, error) {
	size := int64(len(content))
	if err := ValidateDocument(name, size); err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		Size:       size,
		Content:    content,
		UploadedAt: time.Now(),
	}

	docs := d.Load()
	docs[doc.ID] = doc
	if err := d.persist(docs); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns the document with the given ID.
func (d *DocumentStore) Get(id string) (Document, error) {
	docs := d.Load()
	doc, ok := docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes the document with the given ID.
func (d *DocumentStore) Delete(id string) error {
	docs := d.Load()
	if _, ok := docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(docs, id)
	return d.persist(docs)
}

// List returns all documents, most recently uploaded first.
func (d *DocumentStore) List() []Document {
	docs := d.Load()
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// persist writes the document map back to the store.
func (d *DocumentStore) persist(docs map[string]Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	if err := d.store.Set(KeyDocuments, string(data)); err != nil {
		d.log.Errorf("failed to persist documents: %v", err)
		return err
	}
	return nil
}
