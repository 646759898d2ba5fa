package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements domain.RateLimiter with a sliding window kept in a
// Redis sorted set: one member per request, scored by arrival time in
// microseconds. Expired members are pruned on each check.
type RateLimiter struct {
	rdb *redis.Client
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{rdb: c.Underlying()}
}

func rateLimitKey(key string) string { return "ratelimit:" + key }

// Allow counts a request for key and reports whether it fits inside the
// window. When the window is already full the request's member is removed
// again so a rejected request does not consume budget.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitKey(key)
	now := time.Now().UnixMicro()
	member := fmt.Sprintf("%d:%s", now, uuid.NewString())

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", fmt.Sprintf("%d", now-window.Microseconds()))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now), Member: member})
	count := pipe.ZCard(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit %s: %w", key, err)
	}

	if count.Val() > int64(limit) {
		if err := rl.rdb.ZRem(ctx, k, member).Err(); err != nil {
			return false, fmt.Errorf("redis: rate limit rollback %s: %w", key, err)
		}
		return false, nil
	}
	return true, nil
}
