package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/checksum"
	"github.com/starford/envy/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the vault-relative path from the route wildcard.
// Encoded slashes (papers%2Fa.md) are accepted.
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Groups handles GET /api/groups.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	groups := h.svc.Groups(r.Context())
	if groups == nil {
		groups = []noteservice.Group{}
	}
	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

// ListNotes handles GET /api/notes, optionally filtered by ?group=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.svc.List(r.Context(), r.URL.Query().Get("group"))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/*. The checksum doubles as ETag.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	note, err := h.svc.Note(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			writeInternal(w, r, "get note", err)
		}
		return
	}

	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	if checksum.Matches(r.Header.Get("If-None-Match"), note.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search. A missing or empty q is not an error; the
// response carries empty_query instead.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, h.svc.Search(r.Context(), q))
}

// Citations handles GET /api/citations: every paper citation, one per block.
func (h *Handler) Citations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-bibtex; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, c := range h.svc.Citations(r.Context()) {
		_, _ = w.Write([]byte(c + "\n\n"))
	}
}

// CreatePaper handles POST /api/papers.
func (h *Handler) CreatePaper(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreatePaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.BibTeX) == "" {
		writeError(w, http.StatusBadRequest, "bibtex is required")
		return
	}

	path, err := h.svc.CreatePaperNote(r.Context(), req.BibTeX)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "note already exists")
		case errors.Is(err, apperr.ErrMetadata):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeInternal(w, r, "create paper", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, CreatePaperResponse{Path: path})
}
