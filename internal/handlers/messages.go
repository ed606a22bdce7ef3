package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
)

// MessageHandler provides mirrored messaging endpoints.
type MessageHandler struct {
	Messages MessageService
}

type sendMessagePayload struct {
	Text string `json:"text"`
}

// Send handles POST /api/v1/messages/{peer}.
func (h MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid message payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	msg, err := h.Messages.Send(ctx, CallerID(ctx), r.PathValue("peer"), req.Text)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"message": msg})
}

// List handles GET /api/v1/messages/{peer}: the caller's copy of the
// conversation thread. This is the only surface exposing message bodies.
func (h MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msgs, err := h.Messages.Conversation(ctx, CallerID(ctx), r.PathValue("peer"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if msgs == nil {
		msgs = []models.Message{}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"messages": msgs})
}
