package index

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/envy/internal/models"
)

// EventKind classifies a filesystem change notification.
type EventKind int

const (
	EventOther EventKind = iota
	// EventModify is a content or metadata change.
	EventModify
	// EventCreate is a file appearing outside of a paired rename.
	EventCreate
	// EventRename carries both endpoints: Paths[0] is old, Paths[1] is new.
	EventRename
	// EventRenameOne is a rename with only one endpoint known.
	EventRenameOne
	EventRemove
)

func (k EventKind) String() string {
	switch k {
	case EventModify:
		return "modify"
	case EventCreate:
		return "create"
	case EventRename:
		return "rename"
	case EventRenameOne:
		return "rename-one"
	case EventRemove:
		return "remove"
	default:
		return "other"
	}
}

// Event is one change notification for the watched root.
type Event struct {
	Kind  EventKind
	Paths []string
}

// EventCallback is called after a synchronizer-driven index change.
// kind is one of "created", "updated", "moved", "removed"; path is
// relative to the vault root.
type EventCallback func(kind string, path string)

// Synchronizer turns change notifications into index mutations.
//
// Deletions and one-sided renames are not applied: entries for files
// removed that way stay in the index until the next restart.
type Synchronizer struct {
	ix     *Index
	loader *Loader
	logger *slog.Logger
	cb     EventCallback
}

// NewSynchronizer creates a synchronizer. cb may be nil.
func NewSynchronizer(ix *Index, loader *Loader, logger *slog.Logger, cb EventCallback) *Synchronizer {
	return &Synchronizer{ix: ix, loader: loader, logger: logger, cb: cb}
}

// Root returns the watched vault root.
func (s *Synchronizer) Root() string { return s.ix.Root() }

// Apply processes one notification to completion. A returned error means
// the affected entry was left at its last-known-good state.
func (s *Synchronizer) Apply(ev Event) error {
	switch ev.Kind {
	case EventModify, EventCreate:
		if len(ev.Paths) == 0 {
			return nil
		}
		return s.Update(ev.Paths[0])
	case EventRename:
		if len(ev.Paths) == 2 {
			return s.Move(ev.Paths[0], ev.Paths[1])
		}
	}
	s.logger.Debug("sync: event not handled",
		slog.String("kind", ev.Kind.String()),
		slog.Any("paths", ev.Paths))
	return nil
}

// Update reloads the note at path and upserts it. Only strictly newer
// revisions replace what is indexed.
func (s *Synchronizer) Update(path string) error {
	if !models.IsNotePath(path) {
		return nil
	}
	n, err := s.loader.Load(path)
	if err != nil {
		return fmt.Errorf("sync: update: %w", err)
	}

	switch s.ix.Upsert(n) {
	case Inserted:
		s.logger.Debug("sync: indexed", slog.String("path", n.RelPath), slog.String("group", n.Group))
		s.notify("created", n.RelPath)
	case Replaced:
		s.logger.Debug("sync: refreshed", slog.String("path", n.RelPath))
		s.notify("updated", n.RelPath)
	}
	return nil
}

// Move relocates the note at from to to. Renames of non-.md files are
// ignored. Renaming a note to a non-.md name drops it from the index.
func (s *Synchronizer) Move(from, to string) error {
	if !models.IsNotePath(from) {
		return nil
	}
	if !models.IsNotePath(to) {
		if s.ix.Remove(s.ix.Group(from), from) {
			s.notify("removed", s.rel(from))
		}
		return nil
	}

	n, err := s.loader.Load(to)
	if err != nil {
		return fmt.Errorf("sync: move %s: %w", s.rel(from), err)
	}
	s.ix.Move(from, n)
	s.logger.Debug("sync: moved",
		slog.String("from", s.rel(from)),
		slog.String("to", n.RelPath),
		slog.String("group", n.Group))
	s.notify("moved", n.RelPath)
	return nil
}

func (s *Synchronizer) notify(kind, path string) {
	if s.cb != nil {
		s.cb(kind, filepath.ToSlash(path))
	}
}

func (s *Synchronizer) rel(path string) string {
	rel, err := filepath.Rel(s.ix.Root(), path)
	if err != nil {
		return path
	}
	return rel
}
