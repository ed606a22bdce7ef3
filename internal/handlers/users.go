package handlers

import (
	"io"
	"net/http"

	"github.com/linkup/backend/internal/logging"
)

const maxUploadBytes = 10 << 20

// UserHandler serves the caller's own account and public profiles.
type UserHandler struct {
	Accounts AccountService
	Profiles ProfileService
}

// Me handles GET /api/v1/users/me: the caller's own projection,
// including pending requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Profiles.Project(ctx, CallerID(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": profile})
}

// Update handles PATCH /api/v1/users/me. Accepts multipart form data
// with an optional displayName field and an optional avatar file.
func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	callerID := CallerID(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid profile update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	displayName := r.FormValue("displayName")

	var avatar io.Reader
	avatarName := ""
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatar = file
		avatarName = header.Filename
	}

	user, err := h.Accounts.UpdateProfile(ctx, callerID, displayName, avatar, avatarName)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.Profiles.Invalidate(callerID)

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": publicUser(user)})
}

// ByUsername handles GET /api/v1/users/{username}: the public projection
// of any user.
func (h UserHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Profiles.ProjectByUsername(ctx, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": profile})
}
