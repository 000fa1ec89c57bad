// Package testutil provides shared test helpers for setting up note vaults.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/envy/internal/storage"
)

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// WriteNote writes content to rel under root, stamps it with modTime when
// non-zero, and returns the absolute path.
func WriteNote(t *testing.T, root, rel, content string, modTime time.Time) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(abs, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
	return abs
}

// PaperNote renders a paper note with a header citation.
func PaperNote(key, title, author, year string) string {
	return fmt.Sprintf(`---
bibtex: "@article{%s, title={%s}, author={%s}, year={%s}}"
pdf: "./doc/%s.pdf"
tags: [unread]
---
# %s
`, key, title, author, year, key, title)
}
