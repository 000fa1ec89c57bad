// Package models defines the domain types for Envy.
package models

import (
	"path/filepath"
	"time"

	"github.com/starford/envy/internal/bibtex"
)

// RootGroup is the group of notes that sit directly under the vault root.
const RootGroup = "Root"

// Note is one tracked Markdown file plus what was derived from it.
type Note struct {
	// Path is the canonical absolute path and the note's identity.
	Path     string
	RelPath  string
	Group    string
	ModTime  time.Time
	Content  string
	Body     string
	Checksum string
	Meta     *Metadata
}

// Metadata is the decoded header of a note.
type Metadata struct {
	Tags   []string       `json:"tags,omitempty"`
	BibTeX string         `json:"bibtex"`
	Record *bibtex.Record `json:"record"`
	// PDF is relative to the directory containing the note.
	PDF string `json:"pdf"`
}

// FileInfo is what the vault walk yields for each regular file.
type FileInfo struct {
	Path    string
	RelPath string
	ModTime time.Time
	Regular bool
}

// IsNote reports whether the file is a regular Markdown file.
func (f FileInfo) IsNote() bool {
	return f.Regular && IsNotePath(f.Path)
}

// IsNotePath reports whether path carries the Markdown extension.
func IsNotePath(path string) bool {
	return filepath.Ext(path) == ".md"
}

// GroupKind classifies a group by the directory it maps to.
type GroupKind int

const (
	KindRoot GroupKind = iota
	KindPapers
	KindDaily
	KindOther
)

func (k GroupKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindPapers:
		return "papers"
	case KindDaily:
		return "daily"
	default:
		return "other"
	}
}

// MarshalText encodes the kind by name.
func (k GroupKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// GroupKinds maps group directory names to their kind.
type GroupKinds struct {
	Papers string
	Daily  string
}

// Of returns the kind of the named group.
func (g GroupKinds) Of(group string) GroupKind {
	switch group {
	case RootGroup:
		return KindRoot
	case g.Papers:
		return KindPapers
	case g.Daily:
		return KindDaily
	default:
		return KindOther
	}
}
