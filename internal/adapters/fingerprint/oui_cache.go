package fingerprint

import (
	"container/list"
	"sync"
)

// OUICache implements an LRU (Least Recently Used) cache for OUI lookups
type OUICache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	hits     int64
	misses   int64
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

type cacheEntry struct {
	key   string
	value string
}

// NewOUICache creates a new LRU cache with the specified capacity
func NewOUICache(capacity int) *OUICache {
	if capacity <= 0 {
		capacity = 1
	}
	return &OUICache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get retrieves a value from the cache. Reordering the LRU list mutates it,
// so Get takes the write lock.
func (c *OUICache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).value, true
	}
	c.misses++
	return "", false
}

// Set adds or updates a value in the cache
func (c *OUICache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Update existing entry
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	// Add new entry
	entry := &cacheEntry{key, value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	// Evict oldest if over capacity
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the current number of items in the cache
func (c *OUICache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns hit/miss counters
func (c *OUICache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len()}
}

// Clear removes all items from the cache
func (c *OUICache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lru = list.New()
}
