// Package clientdata provides an in-memory read-through cache for backend resources.
// Entries carry an expiry; mutating events drop the affected keys early.
package clientdata

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// generation identifies the state of a key when a load started
type generation struct {
	epoch uint64
	key   uint64
}

// Cache is a TTL map safe for concurrent use.
// Every invalidation bumps a generation so loads started before it are not stored.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gens    map[string]uint64
	epoch   uint64 // bumped by Clear
	now     func() time.Time
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate drops key
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gens[key]++
}

// InvalidatePrefix drops every key starting with prefix and returns how many were dropped
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	// gens holds every key ever fetched, including ones still loading
	for key := range c.gens {
		if strings.HasPrefix(key, prefix) {
			c.gens[key]++
		}
	}
	return n
}

// Clear drops everything
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.epoch++
}

func (c *Cache) begin(key string) generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.gens[key]; !ok {
		c.gens[key] = 0
	}
	return generation{epoch: c.epoch, key: c.gens[key]}
}

// setIfCurrent stores value only if key was not invalidated since gen was taken
func (c *Cache) setIfCurrent(key string, value any, ttl time.Duration, gen generation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != gen.epoch || c.gens[key] != gen.key {
		return false
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return true
}

// Prune removes expired entries and returns how many were removed
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Errors are never cached. A result whose key was invalidated while loading is
// returned but not cached. A nil cache always calls load.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.begin(key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.setIfCurrent(key, v, ttl, gen)
	return v, nil
}
