package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryLimiterWindow(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	l := NewMemoryLimiter()
	l.now = c.now

	assert.True(t, l.Allow("ip", 2, time.Minute))
	assert.True(t, l.Allow("ip", 2, time.Minute))
	assert.False(t, l.Allow("ip", 2, time.Minute))
	assert.True(t, l.Allow("other", 2, time.Minute))

	c.t = c.t.Add(time.Minute)
	assert.True(t, l.Allow("ip", 2, time.Minute))
}

func TestMemoryLimiterIgnoresEmptyKey(t *testing.T) {
	l := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("", 1, time.Minute))
	}
}

func TestMemoryAttemptCounterBlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1000, 0)}
	counter := NewMemoryAttemptCounter(5, 15*time.Minute)
	counter.now = c.now

	for i := 0; i < 4; i++ {
		counter.Fail(ctx, "login:a@b.c")
		assert.False(t, counter.Blocked(ctx, "login:a@b.c"))
	}
	counter.Fail(ctx, "login:a@b.c")
	assert.True(t, counter.Blocked(ctx, "login:a@b.c"))

	c.t = c.t.Add(15 * time.Minute)
	assert.False(t, counter.Blocked(ctx, "login:a@b.c"))
}

func TestMemoryAttemptCounterReset(t *testing.T) {
	ctx := context.Background()
	counter := NewMemoryAttemptCounter(1, time.Minute)
	counter.Fail(ctx, "k")
	assert.True(t, counter.Blocked(ctx, "k"))
	counter.Reset(ctx, "k")
	assert.False(t, counter.Blocked(ctx, "k"))
}

func TestRedisImplementationsFailOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	limiter := NewRedisLimiter(client, "test")
	assert.True(t, limiter.Allow("ip", 1, time.Minute))
	assert.True(t, limiter.Allow("ip", 1, time.Minute))

	counter := NewRedisAttemptCounter(client, 1, time.Minute, "test")
	counter.Fail(context.Background(), "k")
	assert.False(t, counter.Blocked(context.Background(), "k"))

	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow("ip", 1, time.Minute))
	assert.Nil(t, NewRedisLimiter(nil, ""))
}
