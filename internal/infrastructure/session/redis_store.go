package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paydesk/backend/internal/application/chatbot"
	"github.com/redis/go-redis/v9"
)

// RedisPendingStore implements chatbot.PendingStore using Redis.
// This is suitable for distributed deployments where multiple instances
// handle the same chat sessions. Entries expire via Redis TTL.
type RedisPendingStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisPendingStore creates a new Redis-backed pending payment store
func NewRedisPendingStore(cfg RedisConfig, ttl time.Duration) (*RedisPendingStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPendingStore{
		client:    client,
		keyPrefix: "chat:pending:",
		ttl:       ttl,
	}, nil
}

// NewRedisPendingStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisPendingStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPendingStore {
	if keyPrefix == "" {
		keyPrefix = "chat:pending:"
	}
	return &RedisPendingStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Put stores the pending payment for a session, replacing any previous one.
// The TTL restarts on every Put.
func (s *RedisPendingStore) Put(ctx context.Context, key string, pending chatbot.PendingPayment) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending payment: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending payment: %w", err)
	}
	return nil
}

// Get returns the pending payment for a session, or (nil, nil) when none
// exists or the entry has expired
func (s *RedisPendingStore) Get(ctx context.Context, key string) (*chatbot.PendingPayment, error) {
	payload, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pending payment: %w", err)
	}

	var pending chatbot.PendingPayment
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending payment: %w", err)
	}
	return &pending, nil
}

// Delete removes the pending payment for a session. Deleting a missing
// entry is not an error.
func (s *RedisPendingStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete pending payment: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisPendingStore) Close() error {
	return s.client.Close()
}

// Ensure RedisPendingStore implements PendingStore
var _ chatbot.PendingStore = (*RedisPendingStore)(nil)
