package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linkup/backend/internal/models"
)

type recordingNotifier struct {
	recipients []string
	messages   []models.Message
}

func (n *recordingNotifier) MessageDelivered(recipientID string, msg models.Message) {
	n.recipients = append(n.recipients, recipientID)
	n.messages = append(n.messages, msg)
}

func TestMessengerSendMirrorsOneMessage(t *testing.T) {
	ctx := context.Background()
	store := newFakeGraphStore()
	notifier := &recordingNotifier{}

	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	messenger := NewMessenger(store, notifier).WithNowFunc(func() time.Time { return sentAt })

	if err := store.Establish(ctx, "u1", "u2", "conv-1", sentAt); err != nil {
		t.Fatalf("establish: %v", err)
	}

	msg, err := messenger.Send(ctx, "u1", "u2", "  hello  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if msg.Body != "hello" {
		t.Fatalf("expected trimmed body, got %q", msg.Body)
	}
	if msg.ConversationID != "conv-1" {
		t.Fatalf("expected shared conversation id, got %q", msg.ConversationID)
	}
	if !msg.SentAt.Equal(sentAt) {
		t.Fatalf("expected send time %v, got %v", sentAt, msg.SentAt)
	}

	senderCopy, err := messenger.Conversation(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("sender thread: %v", err)
	}
	receiverCopy, err := messenger.Conversation(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("receiver thread: %v", err)
	}

	if len(senderCopy) != 1 || len(receiverCopy) != 1 {
		t.Fatalf("expected one message per side, got %d and %d", len(senderCopy), len(receiverCopy))
	}
	if senderCopy[0] != receiverCopy[0] {
		t.Fatalf("expected identical mirrored records, got %+v vs %+v", senderCopy[0], receiverCopy[0])
	}

	if len(notifier.recipients) != 1 || notifier.recipients[0] != "u2" {
		t.Fatalf("expected one notification for u2, got %+v", notifier.recipients)
	}
	if notifier.messages[0] != msg {
		t.Fatalf("expected the stored message to reach the notifier, got %+v", notifier.messages[0])
	}
}

func TestMessengerSendRequiresFriendship(t *testing.T) {
	ctx := context.Background()
	store := newFakeGraphStore()
	notifier := &recordingNotifier{}
	messenger := NewMessenger(store, notifier)

	if _, err := messenger.Send(ctx, "u1", "u2", "hello"); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no notification on failure, got %d", len(notifier.messages))
	}

	// A one-sided relation is treated the same as no relation.
	store.friendships[[2]string{"u1", "u2"}] = models.Friendship{OwnerID: "u1", PeerID: "u2", ConversationID: "conv-1"}
	if _, err := messenger.Send(ctx, "u1", "u2", "hello"); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends on asymmetric relation, got %v", err)
	}
}

func TestMessengerSendRejectsEmptyText(t *testing.T) {
	messenger := NewMessenger(newFakeGraphStore(), nil)

	if _, err := messenger.Send(context.Background(), "u1", "u2", "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMessengerConversationRequiresFriendship(t *testing.T) {
	messenger := NewMessenger(newFakeGraphStore(), nil)

	if _, err := messenger.Conversation(context.Background(), "u1", "u2"); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}
}
