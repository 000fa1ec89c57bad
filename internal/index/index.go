// Package index keeps an in-memory mirror of the note vault: notes bucketed
// by group and keyed by absolute path, kept current by a change synchronizer
// and searched by a linear ranked scan.
package index

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/starford/envy/internal/models"
)

// UpsertResult tells what Upsert did with the incoming note.
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Inserted
	Replaced
)

// Index maps group → path → note. One mutex guards every read and write;
// there is no reader/writer split. Notes are immutable once indexed, so
// callers may keep the pointers they get back.
//
// The zero value is not usable; share a single *Index between the server
// handlers and the watcher.
type Index struct {
	root string

	mu     sync.Mutex
	groups map[string]map[string]*models.Note
}

// New creates an empty index for the vault at root (absolute).
func New(root string) *Index {
	return &Index{
		root:   filepath.Clean(root),
		groups: make(map[string]map[string]*models.Note),
	}
}

// Root returns the vault root the index groups paths against.
func (ix *Index) Root() string { return ix.root }

// Grouping returns the group of path: the first path component below root,
// or models.RootGroup for files directly under root. It depends on the path
// alone, never on file content.
func Grouping(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.RootGroup
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) <= 1 {
		return models.RootGroup
	}
	return parts[0]
}

// Group returns the group of path under this index's root.
func (ix *Index) Group(path string) string {
	return Grouping(ix.root, path)
}

// Upsert inserts n if its path is absent. An existing entry is replaced only
// when n is strictly newer, so content never regresses.
func (ix *Index) Upsert(n *models.Note) UpsertResult {
	n = ix.normalize(n)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	notes := ix.bucket(n.Group)
	cur, ok := notes[n.Path]
	if !ok {
		notes[n.Path] = n
		return Inserted
	}
	if n.ModTime.After(cur.ModTime) {
		notes[n.Path] = n
		return Replaced
	}
	return Unchanged
}

// Lookup returns the note stored at path within group.
func (ix *Index) Lookup(group, path string) (*models.Note, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n, ok := ix.groups[group][filepath.Clean(path)]
	return n, ok
}

// Find returns the note at path, deriving its group.
func (ix *Index) Find(path string) (*models.Note, bool) {
	return ix.Lookup(ix.Group(path), path)
}

// Remove deletes path from group and reports whether it was present.
func (ix *Index) Remove(group, path string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.removeLocked(group, filepath.Clean(path))
}

// Move removes from and inserts n under its own group in one critical
// section, so readers never observe the note missing from both places.
func (ix *Index) Move(from string, n *models.Note) {
	n = ix.normalize(n)
	from = filepath.Clean(from)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(ix.Group(from), from)
	ix.bucket(n.Group)[n.Path] = n
}

// Len returns the number of indexed notes.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	total := 0
	for _, notes := range ix.groups {
		total += len(notes)
	}
	return total
}

// Each calls fn once per group in name order with that group's notes sorted
// by path. The lock is held for the whole traversal; fn must not call back
// into the index.
func (ix *Index) Each(fn func(group string, notes []*models.Note)) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, group := range ix.groupNamesLocked() {
		fn(group, sortedNotes(ix.groups[group]))
	}
}

// Groups returns the group names in order.
func (ix *Index) Groups() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.groupNamesLocked()
}

// Notes returns the notes of group sorted by path.
func (ix *Index) Notes(group string) []*models.Note {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return sortedNotes(ix.groups[group])
}

func (ix *Index) normalize(n *models.Note) *models.Note {
	path := filepath.Clean(n.Path)
	group := ix.Group(path)
	if n.Path == path && n.Group == group {
		return n
	}
	c := *n
	c.Path = path
	c.Group = group
	return &c
}

func (ix *Index) bucket(group string) map[string]*models.Note {
	notes, ok := ix.groups[group]
	if !ok {
		notes = make(map[string]*models.Note)
		ix.groups[group] = notes
	}
	return notes
}

func (ix *Index) removeLocked(group, path string) bool {
	notes, ok := ix.groups[group]
	if !ok {
		return false
	}
	if _, ok := notes[path]; !ok {
		return false
	}
	delete(notes, path)
	if len(notes) == 0 {
		delete(ix.groups, group)
	}
	return true
}

func (ix *Index) groupNamesLocked() []string {
	names := make([]string, 0, len(ix.groups))
	for g := range ix.groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

func sortedNotes(m map[string]*models.Note) []*models.Note {
	out := make([]*models.Note, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
