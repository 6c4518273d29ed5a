package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evora/catalog/internal/domain"
)

// DefaultMaxEntries bounds the cache when no size is configured
const DefaultMaxEntries = 1024

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Entries are bounded by an LRU so unbounded query variety cannot grow memory.
type MemoryCache struct {
	data *lru.Cache[string, cacheItem]

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryCache creates a new in-memory cache holding at most maxEntries items
func NewMemoryCache(maxEntries int) *MemoryCache {
	return newMemoryCache(maxEntries, 10*time.Minute)
}

func newMemoryCache(maxEntries int, cleanupEvery time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	data, err := lru.New[string, cacheItem](maxEntries)
	if err != nil {
		// lru.New only fails for a non-positive size
		panic(err)
	}

	cache := &MemoryCache{
		data: data,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries periodically
	go cache.cleanupExpired(cleanupEvery)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	item, exists := c.data.Get(key)
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Check if expired
	if time.Now().After(item.Expiration) {
		c.data.Remove(key)
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.data.Add(key, cacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.data.Remove(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	item, exists := c.data.Peek(key)
	if !exists {
		return false, nil
	}
	return !time.Now().After(item.Expiration), nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(every time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCache) purgeExpired() {
	now := time.Now()
	for _, key := range c.data.Keys() {
		if item, ok := c.data.Peek(key); ok && now.After(item.Expiration) {
			c.data.Remove(key)
		}
	}
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	return c.data.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.data.Purge()
}
