package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle rate-limits keyed operations with a Redis counter that expires
// after the configured window. Key format: throttle:<key>
type Throttle struct {
	client      *redis.Client
	window      time.Duration
	maxAttempts int64
}

// NewThrottle creates a Throttle wrapping the given Redis client.
func NewThrottle(client *redis.Client, window time.Duration, maxAttempts int64) *Throttle {
	return &Throttle{client: client, window: window, maxAttempts: maxAttempts}
}

// Allow records one attempt for key and reports whether it stays within the
// window's budget. The expiry is set when the counter is first created, so
// the window is anchored to the first attempt.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "throttle:" + key

	n, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, redisKey, t.window).Err(); err != nil {
			return false, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return n <= t.maxAttempts, nil
}
