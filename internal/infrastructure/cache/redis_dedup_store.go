package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/backend/internal/infrastructure/config"
)

// RedisDedupStore implements DedupStore on Redis. Suitable for deployments
// where several instances must share alert state.
type RedisDedupStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDedupStore connects to Redis and returns the store
func NewRedisDedupStore(cfg config.RedisConfig) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDedupStore{
		client:    client,
		keyPrefix: "alert:dedup:",
	}, nil
}

// NewRedisDedupStoreWithClient wraps an existing Redis client, useful for
// tests or when sharing a client across components
func NewRedisDedupStoreWithClient(client *redis.Client, keyPrefix string) *RedisDedupStore {
	if keyPrefix == "" {
		keyPrefix = "alert:dedup:"
	}
	return &RedisDedupStore{client: client, keyPrefix: keyPrefix}
}

// MarkAlerted uses SETNX so the mark-and-check is a single atomic operation
func (s *RedisDedupStore) MarkAlerted(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark alert: %w", err)
	}
	return set, nil
}

// Close closes the Redis client
func (s *RedisDedupStore) Close() error {
	return s.client.Close()
}

// Ensure RedisDedupStore implements DedupStore
var _ DedupStore = (*RedisDedupStore)(nil)
