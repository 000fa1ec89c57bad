package index

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/starford/envy/internal/models"
)

// Score weights.
const (
	keyWeight    = 1
	yearWeight   = 5
	titleWeight  = 2
	authorWeight = 2
	pathWeight   = 3
)

// Entry describes a note for listings and search hits.
type Entry struct {
	Group   string   `json:"group"`
	Path    string   `json:"path"`
	RelPath string   `json:"rel_path"`
	Key     string   `json:"key,omitempty"`
	Title   string   `json:"title,omitempty"`
	Author  string   `json:"author,omitempty"`
	Year    string   `json:"year,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Describe builds the entry for n.
func Describe(n *models.Note) Entry {
	e := Entry{
		Group:   n.Group,
		Path:    n.Path,
		RelPath: filepath.ToSlash(n.RelPath),
	}
	if n.Meta != nil {
		e.Tags = n.Meta.Tags
		if r := n.Meta.Record; r != nil {
			e.Key = r.Key
			e.Title = r.Title
			e.Author = r.Author
			e.Year = r.Year
		}
	}
	return e
}

// Match is one scored search hit.
type Match struct {
	Score int   `json:"score"`
	Entry Entry `json:"entry"`
}

// Score rates n against query. A query containing an uppercase letter is
// matched case-sensitively; otherwise query and fields are lower-cased.
// Notes without a citation record can only earn the path term.
func Score(n *models.Note, query string) int {
	fold := func(s string) string { return s }
	if !hasUpper(query) {
		fold = strings.ToLower
		query = strings.ToLower(query)
	}

	score := 0
	if n.Meta != nil && n.Meta.Record != nil {
		r := n.Meta.Record
		if strings.Contains(fold(r.Key), query) {
			score += keyWeight
		}
		if fold(r.Year) == query {
			score += yearWeight
		}
		if strings.Contains(fold(r.Title), query) {
			score += titleWeight
		}
		if strings.Contains(fold(r.Author), query) {
			score += authorWeight
		}
	}
	if strings.Contains(fold(filepath.ToSlash(n.RelPath)), query) {
		score += pathWeight
	}
	return score
}

// Search scores every note against query and returns the positive hits in
// ascending score order, ties broken by path. An empty query returns
// ok=false, which is distinct from a query with no hits.
func (ix *Index) Search(query string) (matches []Match, ok bool) {
	if query == "" {
		return nil, false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	matches = []Match{}
	for _, notes := range ix.groups {
		for _, n := range notes {
			if s := Score(n, query); s > 0 {
				matches = append(matches, Match{Score: s, Entry: Describe(n)})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].Entry.Path < matches[j].Entry.Path
	})
	return matches, true
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
