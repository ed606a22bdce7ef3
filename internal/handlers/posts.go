package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
	"github.com/linkup/backend/internal/social"
)

// PostHandler serves the shared feed and per-post engagement endpoints.
type PostHandler struct {
	Posts PostService
}

// List handles GET /api/v1/posts: the full feed, newest first.
func (h PostHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.Posts.List(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if posts == nil {
		posts = []models.PostView{}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"posts": posts})
}

// Create handles POST /api/v1/posts. Accepts multipart form data with a
// body field and an optional media file.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid post payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	body := r.FormValue("body")

	var media io.Reader
	mediaName := ""
	if file, header, err := r.FormFile("media"); err == nil {
		defer file.Close()
		media = file
		mediaName = header.Filename
	}

	post, err := h.Posts.Create(ctx, CallerID(ctx), body, media, mediaName)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"post": post})
}

// Engage handles POST /api/v1/posts/{id}/engage. The payload carries at
// most one action; when several are present the highest-precedence one
// wins and the rest are ignored.
func (h PostHandler) Engage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload social.EngagementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logging.FromContext(ctx).Warn("invalid engagement payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	action, err := social.ParseEngagement(payload)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	post, err := h.Posts.Engage(ctx, CallerID(ctx), r.PathValue("id"), action)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"post": post})
}

// Delete handles DELETE /api/v1/posts/{id}. Only the author may remove
// a post; its comments and likes go with it.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Posts.Delete(ctx, CallerID(ctx), r.PathValue("id")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "post deleted"})
}
