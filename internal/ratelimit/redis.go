package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "videogen:ratelimit:"

// RedisLimiter counts submissions in a shared Redis window so multiple API
// instances enforce one budget per session.
type RedisLimiter struct {
	rdb   *redis.Client
	limit int
	per   time.Duration
}

func NewRedisLimiter(rdb *redis.Client, limit int, per time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, per: per}
}

func (l *RedisLimiter) Allow(ctx context.Context, sessionID string) (Result, error) {
	key := redisKeyPrefix + sessionID

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.per).Err(); err != nil {
			return Result{}, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	if count <= int64(l.limit) {
		return Result{Allowed: true}, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: ttl: %w", err)
	}
	retryAfter := int(math.Ceil(ttl.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return Result{Allowed: false, RetryAfterSeconds: retryAfter}, nil
}

var _ Limiter = (*RedisLimiter)(nil)
