package caching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	// IsRateLimited records one hit for key and reports whether the key has
	// exceeded limit within the current window.
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

// counter is the subset of *redis.Client the limiter needs.
type counter interface {
	redis.Scripter
	Ping(ctx context.Context) *redis.StatusCmd
}

// hitScript increments the window counter and gives it a TTL whenever it has
// none, in one atomic step.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

type redisRateLimiter struct {
	client counter
	prefix string
}

// NewRedisClient builds a client from an address that may carry a redis://
// or rediss:// scheme.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}
	return redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return newRateLimiter(client)
}

func newRateLimiter(client counter) *redisRateLimiter {
	return &redisRateLimiter{client: client, prefix: "dinedash:ratelimit:"}
}

func (r *redisRateLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := r.prefix + key
	count, err := hitScript.Run(ctx, r.client, []string{cacheKey}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("increment rate limit: %w", err)
	}
	return count > int64(limit), nil
}

func (r *redisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
