package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces all browser state in Redis.
const keyPrefix = "local:"

// redisProvider hands out Redis-backed stores sharing one client.
type redisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProvider creates a Provider backed by Redis. Every write refreshes
// the key's TTL so an active browser keeps its state.
func NewRedisProvider(client *redis.Client, ttl time.Duration) Provider {
	return &redisProvider{client: client, ttl: ttl}
}

// For returns the store for one browser.
func (p *redisProvider) For(browserID string) Store {
	return &redisStore{
		client: p.client,
		ttl:    p.ttl,
		prefix: keyPrefix + browserID + ":",
	}
}

// redisStore implements Store with one Redis string per key.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Get reads one key.
func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s from Redis: %w", key, err)
	}
	return val, true, nil
}

// Set writes one key with the provider TTL.
func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s to Redis: %w", key, err)
	}
	return nil
}

// Remove deletes keys in a single round trip.
func (s *redisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("deleting keys from Redis: %w", err)
	}
	return nil
}
