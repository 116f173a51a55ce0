package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// DefaultChannel is the Redis Pub/Sub channel carrying invalidation events.
const DefaultChannel = "coretask:cache:invalidate"

// Event describes one eviction. All marks a broad eviction of Kind; otherwise
// the event names a single key.
type Event struct {
	Origin   string `json:"origin"`
	Kind     Kind   `json:"kind"`
	Scope    string `json:"scope,omitempty"`
	TenantID int64  `json:"tenant_id,omitempty"`
	All      bool   `json:"all,omitempty"`
}

// Broadcaster carries invalidation events between instances sharing a
// database.
type Broadcaster interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe delivers events to handle until ctx is cancelled.
	Subscribe(ctx context.Context, handle func(Event)) error
}

// RedisBroadcaster implements Broadcaster with Redis Pub/Sub.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	closed bool
}

// NewRedisBroadcaster creates a broadcaster on channel, or DefaultChannel.
func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{client: client, channel: channel}
}

// NewRedisBroadcasterFromURL parses a redis:// URL and connects.
func NewRedisBroadcasterFromURL(ctx context.Context, url, channel string) (*RedisBroadcaster, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisBroadcaster(client, channel), nil
}

// Publish sends ev to every subscriber of the channel.
func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode invalidation event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe blocks, handing decoded events to handle. Undecodable messages are
// logged and dropped.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, handle func(Event)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				logging.Op().Warn("dropping malformed invalidation event", "channel", b.channel, "error", err)
				continue
			}
			handle(ev)
		}
	}
}

// Close releases the Redis client.
func (b *RedisBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}

func decodeEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Kind == "" {
		return Event{}, errors.New("event has no kind")
	}
	return ev, nil
}
