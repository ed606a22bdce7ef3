package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkup/backend/internal/auth"
	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/social"
	"github.com/linkup/backend/internal/storage"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	logger := logging.FromContext(ctx)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps domain errors to HTTP statuses and emits a JSON body.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	respondJSON(ctx, w, statusForError(err), map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, social.ErrValidation),
		errors.Is(err, social.ErrSelfRequest),
		errors.Is(err, social.ErrMissingCommentID),
		errors.Is(err, social.ErrNoAction):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrAccessTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, social.ErrNotAuthor),
		errors.Is(err, social.ErrNotFriends):
		return http.StatusForbidden
	case errors.Is(err, social.ErrNotFound),
		errors.Is(err, social.ErrNoSuchRequest):
		return http.StatusNotFound
	case errors.Is(err, social.ErrUsernameTaken),
		errors.Is(err, social.ErrAlreadyFriends),
		errors.Is(err, social.ErrAlreadyRequested):
		return http.StatusConflict
	case errors.Is(err, storage.ErrUpstream),
		errors.Is(err, social.ErrTokenIssue):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
