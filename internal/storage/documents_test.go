// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{"markdown ok", "notes.md", 1024, false},
		{"plain text ok", "readme.txt", 1024, false},
		{"json ok", "data.json", 1024, false},
		{"uppercase extension ok", "NOTES.MD", 1024, false},
		{"binary rejected", "photo.png", 1024, true},
		{"executable rejected", "tool.exe", 10, true},
		{"no extension rejected", "Makefile", 10, true},
		{"too large rejected", "big.txt", MaxDocumentSize + 1, true},
		{"at limit ok", "exact.txt", MaxDocumentSize, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.file, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocument(%q, %d) = %v, wantErr %v", tt.file, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestDocumentStore_SaveGetDelete(t *testing.T) {
	d := NewDocumentStore(NewMemStore(), nil)

	doc, err := d.Save("notes.md", "# Heading\n\nSome notes.")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected generated document ID")
	}
	if doc.Size != int64(len("# Heading\n\nSome notes.")) {
		t.Errorf("Size = %d", doc.Size)
	}

	got, err := d.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != doc.Content || got.Name != "notes.md" {
		t.Errorf("Get returned %+v", got)
	}

	if err := d.Delete(doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := d.Get(doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Get after Delete = %v, want ErrDocumentNotFound", err)
	}
	if err := d.Delete(doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("double Delete = %v, want ErrDocumentNotFound", err)
	}
}

func TestDocumentStore_RejectsBeforeSideEffects(t *testing.T) {
	mem := NewMemStore()
	d := NewDocumentStore(mem, nil)

	if _, err := d.Save("malware.exe", "MZ"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := d.Save("huge.txt", strings.Repeat("x", MaxDocumentSize+1)); err == nil {
		t.Fatal("expected size error")
	}
	if mem.Len() != 0 {
		t.Error("rejected uploads must not write to the store")
	}
}

func TestDocumentStore_ToleratesCorruptPayload(t *testing.T) {
	mem := NewMemStore()
	d := NewDocumentStore(mem, nil)

	mem.Set(KeyDocuments, "{broken")
	if got := d.Load(); len(got) != 0 {
		t.Errorf("corrupt payload should load as empty map, got %d", len(got))
	}

	// Still usable after the corrupt read.
	if _, err := d.Save("ok.txt", "fine"); err != nil {
		t.Fatalf("Save after corruption: %v", err)
	}
	if got := len(d.List()); got != 1 {
		t.Errorf("List = %d, want 1", got)
	}
}
