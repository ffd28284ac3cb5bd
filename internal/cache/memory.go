package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jforshea/authhub/internal/domain/user"
)

// Memory is a process-local TTL cache for redacted users. Used when no
// redis address is configured.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[int64]entry
}

type entry struct {
	val user.User
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[int64]entry),
	}
}

func (c *Memory) Get(ctx context.Context, id int64) (user.User, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[id]
	c.mu.RUnlock()
	if !ok {
		return user.User{}, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, id)
		c.mu.Unlock()
		return user.User{}, false
	}

	return e.val, true
}

func (c *Memory) Set(ctx context.Context, u user.User) {
	c.mu.Lock()
	c.m[u.ID] = entry{val: u, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Delete(id int64) {
	c.mu.Lock()
	delete(c.m, id)
	c.mu.Unlock()
}
