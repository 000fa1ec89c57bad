package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/envy/internal/noteservice"
)

// NewRouter mounts the read API, paper creation, attachments and, when
// events is non-nil, the SSE stream. All routes share the token check.
func NewRouter(svc *noteservice.Service, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)
	files := NewAttachmentHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(token))

	r.Get("/groups", h.Groups)
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)
	r.Get("/search", h.Search)
	r.Get("/citations", h.Citations)
	r.Post("/papers", h.CreatePaper)
	r.Get("/attachments/*", files.ServeFile)

	if events != nil {
		r.Method(http.MethodGet, "/events", events)
	}
	return r
}
