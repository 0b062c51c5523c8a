package server

import (
	"sync"
	"time"
)

// Cache stores rendered outputs by request digest.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

// MemoryCache is the in-memory Cache.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	stats      CacheStats
	now        func() time.Time
	stop       chan struct{}
}

// NewMemoryCache creates an in-memory cache holding at most maxEntries
// entries (unbounded when maxEntries <= 0). A positive cleanupInterval
// starts a janitor that drops expired entries until Close is called.
func NewMemoryCache(cleanupInterval time.Duration, maxEntries int) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || e.isExpired(c.now()) {
		c.stats.Misses++
		cacheEvents.WithLabelValues("miss").Inc()
		return nil, false
	}
	c.stats.Hits++
	cacheEvents.WithLabelValues("hit").Inc()
	return e.value, true
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.makeRoom(now)
	}
	c.entries[key] = &entry{value: value, expiration: now.Add(ttl)}
	c.stats.Sets++
}

// makeRoom drops expired entries, then the entry closest to expiry if the
// cache is still full. Callers hold c.mu.
func (c *MemoryCache) makeRoom(now time.Time) {
	c.stats.Evictions += int64(c.dropExpired(now))
	if len(c.entries) < c.maxEntries {
		return
	}
	var (
		oldest string
		at     time.Time
	)
	for key, e := range c.entries {
		if oldest == "" || e.expiration.Before(at) {
			oldest, at = key, e.expiration
		}
	}
	delete(c.entries, oldest)
	c.stats.Evictions++
	cacheEvents.WithLabelValues("evict").Inc()
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

// Close stops the janitor.
func (c *MemoryCache) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *MemoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := c.dropExpired(c.now())
	c.stats.Evictions += int64(count)
	return count
}

func (c *MemoryCache) dropExpired(now time.Time) int {
	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

func (c *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}
