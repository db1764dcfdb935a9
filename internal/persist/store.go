// Package persist bridges the in-memory state containers to durable Redis
// slots and fans committed changes out to other running instances over
// pub/sub. Each slot is a single JSON value under a well-known key; every
// write publishes a change notification tagged with the writer's origin so
// the writer can ignore its own echo.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"folio/internal/util"
)

// Slot keys for the four durable state slots.
const (
	KeyProjects = "portfolio_projects"
	KeyProgress = "portfolio_progress"
	KeyProfile  = "portfolio_profile"
	KeySite     = "official_site_content"
)

const channelPrefix = "folio:sync:"

// envelope is the pub/sub message published alongside every slot write.
type envelope struct {
	Origin string          `json:"origin"`
	Data   json.RawMessage `json:"data"`
}

// Store is the Redis-backed slot layer. Origin identifies this instance in
// change notifications.
type Store struct {
	client *redis.Client
	origin string
}

// NewStore connects to Redis and verifies the connection.
func NewStore(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client), nil
}

// NewStoreWithClient wraps an existing Redis client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		origin: util.NewID("origin"),
	}
}

// Origin returns this instance's identity as carried in notifications.
func (s *Store) Origin() string { return s.origin }

// Load reads a slot. A missing slot returns (nil, nil).
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return data, nil
}

// Save writes a slot and publishes the change notification. The write and
// the notification are separate commands; a crash between them loses only
// the notification, never the data.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	msg, err := json.Marshal(envelope{Origin: s.origin, Data: data})
	if err != nil {
		return fmt.Errorf("encode notification for %s: %w", key, err)
	}
	if err := s.client.Publish(ctx, channelPrefix+key, msg).Err(); err != nil {
		return fmt.Errorf("notify slot %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
