package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
	"github.com/sakif/second-brain/internal/validation"
)

// ContentHandler serves the owner-scoped content CRUD. Every route here
// sits behind RequireAuth; the owner ID always comes from the validated
// token, never from the request body.
type ContentHandler struct {
	contents *service.ContentService
	validate *validation.Validator
	logger   *slog.Logger
}

func NewContentHandler(contents *service.ContentService, validate *validation.Validator, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		contents: contents,
		validate: validate,
		logger:   logger,
	}
}

// createContentRequest mirrors the saved-reference shape: a short title, a
// free-form type tag ("video", "article", "pdf", …), and an optional link
// — a scanned PDF has no URL.
type createContentRequest struct {
	Title string `json:"title" validate:"required,max=30"`
	Link  string `json:"link"`
	Type  string `json:"type"  validate:"required"`
}

// HandleCreate saves a new content reference for the authenticated user.
//
// HTTP: POST /api/v1/content (bearer)
// Body: {"title": ..., "link": ..., "type": ...}
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req createContentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if _, err := h.contents.Create(r.Context(), userID, req.Title, req.Link, req.Type); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Content added"})
}

// HandleList returns all of the authenticated user's content.
//
// HTTP: GET /api/v1/content (bearer)
// Response: {"content": [...]} with each item's owner expanded to
// {id, username}.
func (h *ContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	contents, err := h.contents.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.Content{"content": contents})
}

type deleteContentRequest struct {
	ContentID string `json:"contentId" validate:"required"`
}

// HandleDelete removes one content item owned by the authenticated user.
//
// HTTP: DELETE /api/v1/content (bearer)
// Body: {"contentId": ...}
//
// The ID travels in the body, not the path — that's the contract the
// frontend was built against. 404 when the item doesn't exist or belongs
// to someone else; the two cases are deliberately indistinguishable.
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req deleteContentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.contents.Delete(r.Context(), userID, req.ContentID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Content deleted successfully"})
}
