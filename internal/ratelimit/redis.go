package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 250 * time.Millisecond

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const failScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RedisLimiter shares request budgets across API instances. Redis errors
// admit the request.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	script *redis.Script
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		script: redis.NewScript(rateLimitScript),
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{prefixed(l.prefix, key)}, millis(window), limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}

// RedisAttemptCounter keeps login failure counters in Redis with a TTL equal
// to the window. Redis errors never block a caller.
type RedisAttemptCounter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
}

func NewRedisAttemptCounter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisAttemptCounter {
	if client == nil {
		return nil
	}
	return &RedisAttemptCounter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(failScript),
	}
}

func (c *RedisAttemptCounter) Blocked(ctx context.Context, key string) bool {
	if c == nil || c.client == nil || key == "" || c.limit <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	count, err := c.client.Get(ctx, prefixed(c.prefix, key)).Int()
	if err != nil {
		return false
	}
	return count >= c.limit
}

func (c *RedisAttemptCounter) Fail(ctx context.Context, key string) {
	if c == nil || c.client == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	_ = c.script.Run(ctx, c.client, []string{prefixed(c.prefix, key)}, millis(c.window)).Err()
}

func (c *RedisAttemptCounter) Reset(ctx context.Context, key string) {
	if c == nil || c.client == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	_ = c.client.Del(ctx, prefixed(c.prefix, key)).Err()
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

func millis(d time.Duration) int64 {
	ms := d.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return ms
}
