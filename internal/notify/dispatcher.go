package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linkup/backend/internal/models"
)

// DispatcherConfig controls the concurrency characteristics of the dispatcher.
type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Dispatcher fans delivery notifications out to the publisher without
// blocking the request path. A full queue drops the event with a log
// line: notifications are a boundary effect, never part of the mutation's
// consistency unit.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration

	jobs   chan dispatchJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type dispatchJob struct {
	recipientID string
	event       Event
}

// NewDispatcher starts the worker pool publishing queued events.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		publisher: publisher,
		logger:    logger,
		timeout:   cfg.Timeout,
		jobs:      make(chan dispatchJob, cfg.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}

	return d
}

// MessageDelivered queues a chat-message notification addressed to the
// recipient. Implements social.Notifier.
func (d *Dispatcher) MessageDelivered(recipientID string, msg models.Message) {
	d.enqueue(recipientID, Event{Kind: "message", Payload: msg})
}

// FriendAccepted queues a friendship-established notification.
func (d *Dispatcher) FriendAccepted(recipientID string, friendship models.Friendship) {
	d.enqueue(recipientID, Event{Kind: "friend_accepted", Payload: friendship})
}

func (d *Dispatcher) enqueue(recipientID string, event Event) {
	job := dispatchJob{recipientID: recipientID, event: event}

	select {
	case <-d.ctx.Done():
		return
	default:
	}

	select {
	case d.jobs <- job:
	default:
		d.logger.Warn("notification queue full, dropping event",
			"recipientId", recipientID, "kind", event.Kind)
	}
}

// Close stops accepting events and waits for the workers to exit.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.cancel()
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.jobs:
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := d.publisher.Publish(ctx, job.recipientID, job.event); err != nil {
				d.logger.Error("publish notification",
					"recipientId", job.recipientID, "kind", job.event.Kind, "error", err)
			}
			cancel()
		}
	}
}
