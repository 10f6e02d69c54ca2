package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL map. Expired entries are dropped lazily on Get.
//
// Every Delete bumps the cache version. A reader that loads its value from
// the source of truth takes Version first and stores with SetIfVersion, so a
// value computed before a concurrent invalidation is never written back.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	m       map[string]entry[V]
	version uint64
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.version
}

// SetIfVersion stores val only when no Delete happened since version was read.
func (c *Cache[V]) SetIfVersion(key string, val V, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		return false
	}

	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	return true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.version++
	c.mu.Unlock()
}
