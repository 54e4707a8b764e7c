package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore deduplicates checkout attempts across instances.
// A lock key claims an attempt while it runs; a result key remembers its
// outcome for replays.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection
func NewRedisIdempotencyStore(addr, password string, db int) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client}, nil
}

func lockKey(key string) string   { return "checkout:lock:" + key }
func resultKey(key string) string { return "checkout:result:" + key }

// TryLock claims the attempt with SET NX; false means another request holds it
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock attempt: %w", err)
	}
	return ok, nil
}

// Remember records the attempt outcome and drops the lock
func (s *RedisIdempotencyStore) Remember(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resultKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return s.client.Del(ctx, lockKey(key)).Err()
}

// Recall returns a previously recorded outcome, if any
func (s *RedisIdempotencyStore) Recall(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, resultKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read attempt: %w", err)
	}
	return value, true, nil
}

// Release drops the lock without recording an outcome
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockKey(key)).Err()
}

// Close shuts down the client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
