// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/envy/internal/models"

// Provider is the interface for vault file operations. Relative paths are
// resolved against the vault root and may not escape it.
type Provider interface {
	// Root returns the absolute vault root.
	Root() string
	// List returns every regular .md file under dir (relative to vault root).
	List(dir string) ([]models.FileInfo, error)
	// Stat returns file information for path (relative to vault root).
	Stat(path string) (models.FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Create writes a new file at path (relative to vault root) and fails
	// with os.ErrExist if one is already there.
	Create(path string, content []byte) error
	// Rel converts an absolute path under the root into a relative one.
	Rel(abs string) (string, error)
	// Abs resolves a relative path to an absolute one under the root.
	Abs(rel string) (string, error)
}
