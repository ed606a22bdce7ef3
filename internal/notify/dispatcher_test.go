package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linkup/backend/internal/models"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
	done   chan struct{}
}

type capturedEvent struct {
	recipientID string
	event       Event
}

func newCapturePublisher(expect int) *capturePublisher {
	return &capturePublisher{done: make(chan struct{}, expect)}
}

func (p *capturePublisher) Publish(_ context.Context, recipientID string, event Event) error {
	p.mu.Lock()
	p.events = append(p.events, capturedEvent{recipientID: recipientID, event: event})
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *capturePublisher) captured() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestDispatcherDeliversMessageEvents(t *testing.T) {
	publisher := newCapturePublisher(1)
	dispatcher := NewDispatcher(publisher, DispatcherConfig{QueueSize: 4, Workers: 1}, nil)
	defer dispatcher.Close()

	msg := models.Message{ID: "m1", ConversationID: "c1", SenderID: "u1", ReceiverID: "u2", Body: "hello"}
	dispatcher.MessageDelivered("u2", msg)

	waitFor(t, publisher.done)

	events := publisher.captured()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].recipientID != "u2" {
		t.Fatalf("expected recipient u2, got %q", events[0].recipientID)
	}
	if events[0].event.Kind != "message" {
		t.Fatalf("expected kind message, got %q", events[0].event.Kind)
	}
}

func TestDispatcherDeliversFriendAcceptedEvents(t *testing.T) {
	publisher := newCapturePublisher(1)
	dispatcher := NewDispatcher(publisher, DispatcherConfig{QueueSize: 4, Workers: 2}, nil)
	defer dispatcher.Close()

	dispatcher.FriendAccepted("u1", models.Friendship{OwnerID: "u1", PeerID: "u2", ConversationID: "c1"})

	waitFor(t, publisher.done)

	events := publisher.captured()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].event.Kind != "friend_accepted" {
		t.Fatalf("expected kind friend_accepted, got %q", events[0].event.Kind)
	}
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	publisher := newCapturePublisher(1)
	dispatcher := NewDispatcher(publisher, DispatcherConfig{QueueSize: 4, Workers: 1}, nil)

	dispatcher.Close()

	// Enqueueing after shutdown must neither panic nor publish.
	dispatcher.MessageDelivered("u2", models.Message{ID: "m1"})

	if events := publisher.captured(); len(events) != 0 {
		t.Fatalf("expected no events after close, got %d", len(events))
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(newCapturePublisher(1), DispatcherConfig{}, nil)
	dispatcher.Close()
	dispatcher.Close()
}

func TestChannelFor(t *testing.T) {
	if got := ChannelFor("u1"); got != "user:u1:events" {
		t.Fatalf("unexpected channel name %q", got)
	}
}
