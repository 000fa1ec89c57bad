package api

import (
	"errors"
	"net/http"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/noteservice"
)

// AttachmentHandler serves the pdf attachments that notes point at.
type AttachmentHandler struct {
	svc *noteservice.Service
}

// NewAttachmentHandler creates an attachment handler.
func NewAttachmentHandler(svc *noteservice.Service) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// ServeFile handles GET /api/attachments/{note path}. The file is resolved
// from the note's pdf field, relative to the note's directory.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := h.svc.Attachment(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeInternal(w, r, "resolve attachment", err)
		return
	}
	http.ServeFile(w, r, abs)
}
