package ratelimit

import (
	"context"
	"sync"
	"time"
)

// AttemptCounter tracks failed attempts per key. Once limit failures are
// recorded inside the window the key is blocked until the window expires or
// Reset is called.
type AttemptCounter interface {
	Blocked(ctx context.Context, key string) bool
	Fail(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

type MemoryAttemptCounter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*bucket
	now     func() time.Time
}

func NewMemoryAttemptCounter(limit int, window time.Duration) *MemoryAttemptCounter {
	return &MemoryAttemptCounter{limit: limit, window: window, entries: make(map[string]*bucket), now: time.Now}
}

func (c *MemoryAttemptCounter) Blocked(_ context.Context, key string) bool {
	if key == "" || c.limit <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.live(key)
	return ok && b.count >= c.limit
}

func (c *MemoryAttemptCounter) Fail(_ context.Context, key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.live(key); ok {
		b.count++
		return
	}
	c.entries[key] = &bucket{count: 1, windowEnd: c.now().Add(c.window)}
}

func (c *MemoryAttemptCounter) Reset(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryAttemptCounter) live(key string) (*bucket, bool) {
	b, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(b.windowEnd) {
		delete(c.entries, key)
		return nil, false
	}
	return b, true
}
