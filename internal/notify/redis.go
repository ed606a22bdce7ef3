package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is a delivery notification published to a recipient's channel.
type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// Publisher delivers events to a recipient-addressed channel.
type Publisher interface {
	Publish(ctx context.Context, recipientID string, event Event) error
}

// RedisPublisher publishes events over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection with a
// bounded ping before returning.
func NewRedisPublisher(addr, password string, db int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

// Publish marshals the event and publishes it to the recipient's channel.
func (p *RedisPublisher) Publish(ctx context.Context, recipientID string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, ChannelFor(recipientID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (p *RedisPublisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// ChannelFor names the pub/sub channel carrying a user's events.
func ChannelFor(recipientID string) string {
	return fmt.Sprintf("user:%s:events", recipientID)
}
