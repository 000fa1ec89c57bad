package api

import (
	"github.com/starford/envy/internal/index"
	"github.com/starford/envy/internal/noteservice"
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// SearchResponse is the ranked search response. Results is null when the
// query was empty.
type SearchResponse = noteservice.SearchResult

// GroupListResponse wraps the group listing.
type GroupListResponse struct {
	Groups []noteservice.Group `json:"groups"`
}

// NoteListResponse wraps a flat note listing.
type NoteListResponse struct {
	Notes []index.Entry `json:"notes"`
	Total int           `json:"total"`
}

// CreatePaperRequest is the request body for creating a paper note.
type CreatePaperRequest struct {
	BibTeX string `json:"bibtex"`
}

// CreatePaperResponse is returned after a paper note is written.
type CreatePaperResponse struct {
	Path string `json:"path"`
}
