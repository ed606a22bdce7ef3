package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
)

// Notifier receives the stored message for real-time delivery to the
// recipient. Implementations must not block the send path; failures are
// their own to log.
type Notifier interface {
	MessageDelivered(recipientID string, msg models.Message)
}

// Messenger appends an identical message record to both participants'
// conversation threads. The friendship must already exist on both sides.
type Messenger struct {
	store    GraphStore
	notifier Notifier
	now      func() time.Time
}

// NewMessenger constructs the messaging service. The notifier may be nil
// when real-time delivery is disabled.
func NewMessenger(store GraphStore, notifier Notifier) *Messenger {
	return &Messenger{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (m *Messenger) WithNowFunc(now func() time.Time) *Messenger {
	m.now = now
	return m
}

// Send builds one message with a single shared id and timestamp, appends
// it to both sides' threads, and hands the stored value to the notifier
// addressed by the recipient. The friendship is verified before any
// append is attempted.
func (m *Messenger) Send(ctx context.Context, fromID, toID, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	relation, err := m.store.Friendship(ctx, fromID, toID)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := m.store.Friendship(ctx, toID, fromID); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: relation.ConversationID,
		SenderID:       fromID,
		ReceiverID:     toID,
		Body:           text,
		SentAt:         m.now(),
	}

	if err := m.store.AppendMessage(ctx, msg); err != nil {
		return models.Message{}, err
	}

	// The stored message is passed explicitly; the notifier never reaches
	// back into request state.
	if m.notifier != nil {
		m.notifier.MessageDelivered(toID, msg)
	}

	logging.FromContext(ctx).Info("message sent",
		"conversationId", msg.ConversationID, "senderId", fromID, "receiverId", toID)
	return msg, nil
}

// Conversation returns the caller's copy of the thread with peer. This is
// the only path that exposes message bodies.
func (m *Messenger) Conversation(ctx context.Context, ownerID, peerID string) ([]models.Message, error) {
	return m.store.Messages(ctx, ownerID, peerID)
}
