package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
	"github.com/sakif/second-brain/internal/validation"
)

// ShareHandler serves the share toggle (authenticated) and the public
// share resolution (unauthenticated — hash possession is the capability).
type ShareHandler struct {
	shares   *service.ShareService
	validate *validation.Validator
	logger   *slog.Logger
}

func NewShareHandler(shares *service.ShareService, validate *validation.Validator, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shares:   shares,
		validate: validate,
		logger:   logger,
	}
}

// shareRequest toggles sharing. No validation tags: false is a valid value
// and an absent field means "disable", matching the original contract.
type shareRequest struct {
	Share bool `json:"share"`
}

// shareResponse uses *string for the hash so disabling serializes as
// "hash": null rather than an empty string.
type shareResponse struct {
	Message string  `json:"message"`
	Hash    *string `json:"hash"`
}

// HandleShare enables or disables the authenticated user's share link.
//
// HTTP: POST /api/v1/brain/share (bearer)
// Body: {"share": true|false}
//
// Enabling is idempotent — the same hash comes back on repeat calls.
// Disabling always succeeds and responds with a null hash.
func (h *ShareHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req shareRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if !req.Share {
		if err := h.shares.Disable(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, shareResponse{
			Message: "Sharable link disabled",
			Hash:    nil,
		})
		return
	}

	hash, err := h.shares.EnableOrFetch(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		Message: "Sharable link enabled",
		Hash:    &hash,
	})
}

// sharedBrainResponse is the public snapshot: the owner's content list
// plus the share-link entry that resolved it.
type sharedBrainResponse struct {
	Message string           `json:"message"`
	Content []model.Content  `json:"content"`
	Entry   *model.ShareLink `json:"entry"`
}

// HandleResolve serves a shared brain to anyone holding the hash.
//
// HTTP: GET /api/v1/brain/{shareLink} (no auth)
//
// 404 for unknown hashes — including ones that were valid before the
// owner disabled sharing.
func (h *ShareHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "shareLink")

	brain, err := h.shares.Resolve(r.Context(), hash)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sharedBrainResponse{
		Message: "Data fetched successfully",
		Content: brain.Content,
		Entry:   brain.Link,
	})
}
