// Package noteservice is the read-side facade the HTTP API, MCP server and
// CLI commands use over the note index and the vault.
package noteservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/yuin/goldmark"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/index"
	"github.com/starford/envy/internal/models"
	"github.com/starford/envy/internal/storage"
)

var mdRenderer = goldmark.New()

// Group is one directory group and its notes, ordered by path.
type Group struct {
	Name    string           `json:"name"`
	Kind    models.GroupKind `json:"kind"`
	Entries []index.Entry    `json:"entries"`
}

// SearchResult is a ranked result set. EmptyQuery distinguishes "no query"
// from "no hits"; Results is nil only in the former case.
type SearchResult struct {
	Results    []index.Match `json:"results"`
	EmptyQuery bool          `json:"empty_query,omitempty"`
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	index.Entry
	Kind      models.GroupKind `json:"kind"`
	BibTeX    string           `json:"bibtex,omitempty"`
	PDF       string           `json:"pdf,omitempty"`
	Content   string           `json:"content"`
	HTML      string           `json:"html"`
	Checksum  string           `json:"checksum"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Options configures a Service.
type Options struct {
	Kinds models.GroupKinds
	// Descending lists search hits best match first.
	Descending bool
}

// Service answers queries against the index.
type Service struct {
	ix     *index.Index
	store  storage.Provider
	loader *index.Loader
	opts   Options
}

// NewService creates a new note service.
func NewService(ix *index.Index, store storage.Provider, opts Options) *Service {
	return &Service{ix: ix, store: store, loader: index.NewLoader(store), opts: opts}
}

// Kind returns the kind of the named group.
func (s *Service) Kind(group string) models.GroupKind {
	return s.opts.Kinds.Of(group)
}

// Groups lists every group with its entries.
func (s *Service) Groups(_ context.Context) []Group {
	var out []Group
	s.ix.Each(func(group string, notes []*models.Note) {
		g := Group{Name: group, Kind: s.Kind(group), Entries: make([]index.Entry, len(notes))}
		for i, n := range notes {
			g.Entries[i] = index.Describe(n)
		}
		out = append(out, g)
	})
	return out
}

// List returns the entries of one group, or of every group when group is empty.
func (s *Service) List(_ context.Context, group string) []index.Entry {
	var out []index.Entry
	s.ix.Each(func(name string, notes []*models.Note) {
		if group != "" && name != group {
			return
		}
		for _, n := range notes {
			out = append(out, index.Describe(n))
		}
	})
	if out == nil {
		out = []index.Entry{}
	}
	return out
}

// Search ranks notes against query in the configured order.
func (s *Service) Search(_ context.Context, query string) SearchResult {
	matches, ok := s.ix.Search(query)
	if !ok {
		return SearchResult{EmptyQuery: true}
	}
	if s.opts.Descending {
		slices.Reverse(matches)
	}
	return SearchResult{Results: matches}
}

// Note returns the detail of the note at the vault-relative path.
func (s *Service) Note(_ context.Context, rel string) (*NoteDetail, error) {
	n, err := s.find(rel)
	if err != nil {
		return nil, err
	}
	html, err := renderMarkdown(n.Body)
	if err != nil {
		return nil, fmt.Errorf("noteservice: render %s: %w", n.RelPath, err)
	}
	d := &NoteDetail{
		Entry:     index.Describe(n),
		Kind:      s.Kind(n.Group),
		Content:   n.Content,
		HTML:      html,
		Checksum:  n.Checksum,
		UpdatedAt: n.ModTime,
	}
	if n.Meta != nil {
		d.BibTeX = n.Meta.BibTeX
		d.PDF = n.Meta.PDF
	}
	return d, nil
}

// Attachment resolves the pdf attachment of the note at rel to an absolute
// path inside the vault.
func (s *Service) Attachment(_ context.Context, rel string) (string, error) {
	n, err := s.find(rel)
	if err != nil {
		return "", err
	}
	if n.Meta == nil || n.Meta.PDF == "" {
		return "", fmt.Errorf("%w: %s has no attachment", apperr.ErrNotFound, rel)
	}
	target := filepath.Join(filepath.Dir(n.RelPath), filepath.FromSlash(n.Meta.PDF))
	abs, err := s.store.Abs(target)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	info, err := s.store.Stat(target)
	if err != nil || !info.Regular {
		return "", fmt.Errorf("%w: attachment %s", apperr.ErrNotFound, target)
	}
	return abs, nil
}

// Citation returns the raw citation text of the note at rel.
func (s *Service) Citation(_ context.Context, rel string) (string, error) {
	n, err := s.find(rel)
	if err != nil {
		return "", err
	}
	if n.Meta == nil {
		return "", fmt.Errorf("%w: %s has no citation", apperr.ErrNotFound, rel)
	}
	return n.Meta.BibTeX, nil
}

// Citations returns the raw citation text of every paper note, ordered by path.
func (s *Service) Citations(_ context.Context) []string {
	var out []string
	for _, n := range s.ix.Notes(s.opts.Kinds.Papers) {
		if n.Meta != nil {
			out = append(out, n.Meta.BibTeX)
		}
	}
	return out
}

// Refresh loads the note at rel and upserts it, for writers that do not
// wait for the watcher.
func (s *Service) Refresh(rel string) (*models.Note, error) {
	abs, err := s.store.Abs(rel)
	if err != nil {
		return nil, err
	}
	n, err := s.loader.Load(abs)
	if err != nil {
		return nil, err
	}
	s.ix.Upsert(n)
	return n, nil
}

func (s *Service) find(rel string) (*models.Note, error) {
	abs, err := s.store.Abs(rel)
	if err != nil {
		if errors.Is(err, storage.ErrOutsideRoot) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
		}
		return nil, err
	}
	n, ok := s.ix.Find(abs)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
	}
	return n, nil
}

func renderMarkdown(body string) (string, error) {
	var b bytes.Buffer
	if err := mdRenderer.Convert([]byte(body), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
