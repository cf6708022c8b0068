package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tkmproject/tkm-api/pkg/cache"
)

// LoginAttemptRepository counts failed sign-ins per key inside a window.
// Without a Redis client it counts nothing.
type LoginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository constructs the counter store.
func NewLoginAttemptRepository(client *redis.Client) *LoginAttemptRepository {
	return &LoginAttemptRepository{client: client}
}

func attemptKey(key string) string {
	return cache.Key("login", strings.ToLower(key))
}

// Count returns the failures recorded for key.
func (r *LoginAttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	n, err := r.client.Get(ctx, attemptKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get attempts: %w", err)
	}
	return n, nil
}

// Increment records a failure; the window starts at the first failure.
func (r *LoginAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	k := attemptKey(key)
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr attempts: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return n, fmt.Errorf("redis expire attempts: %w", err)
		}
	}
	return n, nil
}

// Reset clears failures after a successful sign-in.
func (r *LoginAttemptRepository) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, attemptKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del attempts: %w", err)
	}
	return nil
}
