package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kvitka-shop/flower-bot/models"
)

const (
	// Redis key prefix for chat sessions
	sessionKeyPrefix = "chat:session:"
	// Default idle TTL for sessions (10 minutes)
	defaultTTL = 600 * time.Second
)

// RedisStore implements Store on Redis. Keys expire after the idle TTL;
// an expired session is indistinguishable from a brand-new one.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Get implements Store.
// Returns nil if the session is not found (not an error).
// Refreshes TTL on every read.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.SessionState, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state models.SessionState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, err
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &state, nil
}

// Put implements Store. Plain SET with TTL: last writer wins.
func (s *RedisStore) Put(ctx context.Context, state *models.SessionState) error {
	state.UpdatedAt = time.Now()

	val, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key(state.ID), val, s.ttl).Err()
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}
