// Package memory provides an in-process cache repository used when Redis is
// not configured, for example in the local demo binary and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/handsapp/backend/internal/ports/outbound"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// CacheRepository is a mutex-guarded map with per-key TTLs. Expired entries
// are dropped lazily on read.
type CacheRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCacheRepository creates an empty in-memory cache.
func NewCacheRepository() outbound.CacheRepository {
	return &CacheRepository{entries: make(map[string]entry)}
}

func (c *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

func (c *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *CacheRepository) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *CacheRepository) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}
