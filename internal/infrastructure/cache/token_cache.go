package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultTokenCacheSize bounds the number of decrypted tokens held in memory.
	DefaultTokenCacheSize = 10000
	// DefaultTokenCacheMaxTTL caps how long any entry may live, whatever TTL Set asks for.
	DefaultTokenCacheMaxTTL = time.Hour
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenCache is a process-local, size-bounded LRU of decrypted tokens.
// The LRU evicts on its own max TTL; per-entry TTLs are checked against now.
type MemoryTokenCache struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return NewMemoryTokenCacheWithClock(time.Now)
}

// NewMemoryTokenCacheWithClock is used by tests to control expiry.
func NewMemoryTokenCacheWithClock(now func() time.Time) *MemoryTokenCache {
	return NewMemoryTokenCacheWithOptions(DefaultTokenCacheSize, DefaultTokenCacheMaxTTL, now)
}

func NewMemoryTokenCacheWithOptions(size int, maxTTL time.Duration, now func() time.Time) *MemoryTokenCache {
	return &MemoryTokenCache{
		lru: expirable.NewLRU[string, entry](size, nil, maxTTL),
		now: now,
	}
}

func (c *MemoryTokenCache) Get(key string) (string, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return "", false
	}
	return e.value, true
}

func (c *MemoryTokenCache) Set(key, value string, ttl time.Duration) {
	c.lru.Add(key, entry{value: value, expiresAt: c.now().Add(ttl)})
}

func (c *MemoryTokenCache) Delete(key string) {
	c.lru.Remove(key)
}

// Len reports how many entries the LRU currently holds, expired or not.
func (c *MemoryTokenCache) Len() int {
	return c.lru.Len()
}
