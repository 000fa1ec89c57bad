package index

import (
	"fmt"
	"path/filepath"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/checksum"
	"github.com/starford/envy/internal/models"
	"github.com/starford/envy/internal/parser"
	"github.com/starford/envy/internal/storage"
)

// Loader reads one note file from the vault and derives its metadata.
type Loader struct {
	store storage.Provider
}

// NewLoader creates a loader over store.
func NewLoader(store storage.Provider) *Loader {
	return &Loader{store: store}
}

// Root returns the vault root.
func (l *Loader) Root() string { return l.store.Root() }

// Load stats, reads and parses the note at the absolute path. I/O failures
// wrap apperr.ErrIO; a malformed header wraps apperr.ErrMetadata.
func (l *Loader) Load(path string) (*models.Note, error) {
	path = filepath.Clean(path)
	rel, err := l.store.Rel(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrIO, err)
	}

	info, err := l.store.Stat(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrIO, err)
	}
	if !info.IsNote() {
		return nil, fmt.Errorf("%w: %s is not a regular .md file", apperr.ErrIO, rel)
	}
	data, err := l.store.Read(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrIO, err)
	}

	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rel, err)
	}

	return &models.Note{
		Path:     path,
		RelPath:  rel,
		Group:    Grouping(l.store.Root(), path),
		ModTime:  info.ModTime,
		Content:  string(data),
		Body:     res.Body,
		Checksum: checksum.Sum(data),
		Meta:     res.Meta,
	}, nil
}
