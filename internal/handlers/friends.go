package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/linkup/backend/internal/logging"
)

// FriendHandler provides friend request and acceptance endpoints.
type FriendHandler struct {
	Graph    GraphService
	Profiles ProfileService
	Notifier FriendNotifier
}

type friendRequestPayload struct {
	TargetID string `json:"targetId"`
}

type friendAcceptPayload struct {
	RequesterID string `json:"requesterId"`
}

// Request handles POST /api/v1/friends/request.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := CallerID(ctx)

	var req friendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid friend request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.TargetID = strings.TrimSpace(req.TargetID)
	if req.TargetID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "targetId is required"})
		return
	}

	if err := h.Graph.RequestFriend(ctx, callerID, req.TargetID); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.Profiles.Invalidate(callerID, req.TargetID)

	profile, err := h.Profiles.Project(ctx, callerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"message": "friend request sent",
		"user":    profile,
	})
}

// Accept handles POST /api/v1/friends/accept.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := CallerID(ctx)

	var req friendAcceptPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid friend accept payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RequesterID = strings.TrimSpace(req.RequesterID)
	if req.RequesterID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requesterId is required"})
		return
	}

	friendship, err := h.Graph.AcceptFriendRequest(ctx, callerID, req.RequesterID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.Profiles.Invalidate(callerID, req.RequesterID)

	// The freshly established relation is handed to the notifier
	// explicitly; the requester learns their request was accepted.
	if h.Notifier != nil {
		h.Notifier.FriendAccepted(req.RequesterID, friendship)
	}

	profile, err := h.Profiles.Project(ctx, callerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"message": "friend request accepted",
		"user":    profile,
	})
}
