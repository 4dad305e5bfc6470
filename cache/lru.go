package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// LRUConfig configures an LRUCache.
type LRUConfig struct {
	// MaxEntries is the capacity of the cache. Zero stores nothing.
	// Default: 1000 (when negative)
	MaxEntries int

	// Clock returns the current time.
	// Default: time.Now
	Clock func() time.Time
}

// Stats reports cache activity counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Entries     int
}

// LRUCache is a bounded in-memory cache with LRU eviction and per-entry TTL.
type LRUCache struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, *cacheEntry] // nil when capacity is zero
	size    int
	clock   func() time.Time
	stats   Stats
}

type cacheEntry struct {
	value      []byte
	insertedAt time.Time
	expiresAt  time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache(config LRUConfig) *LRUCache {
	if config.MaxEntries < 0 {
		config.MaxEntries = 1000
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	c := &LRUCache{clock: config.Clock, size: config.MaxEntries}
	if config.MaxEntries > 0 {
		// NewLRU only fails for non-positive sizes.
		c.entries, _ = simplelru.NewLRU[string, *cacheEntry](config.MaxEntries, nil)
	}
	return c
}

// Get retrieves a copy of a value and marks it as recently used.
// Returns (nil, false) on miss or expiry.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.stats.Misses++
		return nil, false
	}

	entry, ok := c.entries.Peek(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if entry.expired(c.clock()) {
		// Expired - clean up lazily
		c.entries.Remove(key)
		c.stats.Expirations++
		c.stats.Misses++
		return nil, false
	}

	// Promote to most recently used
	c.entries.Get(key)
	c.stats.Hits++
	return bytes.Clone(entry.value), true
}

// Set stores a copy of value with the given TTL. Overwriting an existing key
// refreshes it and counts as use. TTL<=0 stores nothing and drops any
// previous value for key.
func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return nil
	}

	if ttl <= 0 {
		c.entries.Remove(key)
		return nil
	}

	now := c.clock()
	if !c.entries.Contains(key) && c.entries.Len() >= c.size {
		c.dropExpiredOldestLocked(now)
	}

	evicted := c.entries.Add(key, &cacheEntry{
		value:      bytes.Clone(value),
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	})
	if evicted {
		c.stats.Evictions++
	}

	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries != nil {
		c.entries.Remove(key)
	}
	return nil
}

// PurgeExpired removes every expired entry and returns how many were removed.
func (c *LRUCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return 0
	}
	return c.purgeExpiredLocked(c.clock())
}

// Purge removes every entry.
func (c *LRUCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries != nil {
		c.entries.Purge()
	}
}

// Len returns the number of stored entries, including expired entries that
// have not been purged yet.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	if c.entries != nil {
		s.Entries = c.entries.Len()
	}
	return s
}

// Run purges expired entries every interval until ctx is done.
func (c *LRUCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}

// dropExpiredOldestLocked removes expired entries from the least recently
// used end, stopping at the first live one. Expired entries further in are
// left to lookups and PurgeExpired.
func (c *LRUCache) dropExpiredOldestLocked(now time.Time) {
	for {
		_, entry, ok := c.entries.GetOldest()
		if !ok || !entry.expired(now) {
			return
		}
		c.entries.RemoveOldest()
		c.stats.Expirations++
	}
}

func (c *LRUCache) purgeExpiredLocked(now time.Time) int {
	removed := 0
	// Keys are ordered oldest to newest.
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if ok && entry.expired(now) {
			c.entries.Remove(key)
			removed++
		}
	}
	c.stats.Expirations += uint64(removed)
	return removed
}

// Ensure LRUCache implements Cache
var _ Cache = (*LRUCache)(nil)
