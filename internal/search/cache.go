package search

import (
	"fmt"
	"sync"
	"time"

	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// CacheEntry memoizes the full outcome of a completed search.
type CacheEntry struct {
	Key       string
	Results   []model.SearchResult
	Total     int
	Truncated bool
	Timestamp time.Time
}

// ResultCache is a bounded memo of completed searches. Eviction is strictly
// insertion-ordered — entries are not re-promoted on read — with an
// independent lazy TTL: an expired entry is treated as absent and removed
// on access, no background sweep.
type ResultCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	order   []string
	entries map[string]CacheEntry
}

// NewResultCache creates a cache with the given capacity and TTL.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = 10
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]CacheEntry),
	}
}

// Get returns the entry for key if present and younger than the TTL.
func (c *ResultCache) Get(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return CacheEntry{}, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		c.removeLocked(key)
		return CacheEntry{}, false
	}
	return entry, true
}

// Put stores an entry, evicting the insertion-oldest one when the capacity
// is exceeded. Re-putting an existing key refreshes its value and timestamp
// but keeps its original insertion position.
func (c *ResultCache) Put(key string, entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Key = key
	if entry.Timestamp.IsZero() {
		entry.Timestamp = c.now()
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		return
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	for len(c.order) > c.capacity {
		c.removeLocked(c.order[0])
	}
}

// Len returns the number of resident entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// CacheKey derives the composite cache key for a search. Every parameter
// that changes result semantics participates, so two logically different
// searches can never collide.
func CacheKey(req source.SearchRequest) string {
	return fmt.Sprintf("%s|%d|%d|%t|%t|%s",
		req.Query, req.Limit, req.ContextLines, req.GitLabOnly, req.CrossNode, req.NodeID)
}
