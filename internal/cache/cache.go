package cache

import (
	"strings"
	"sync"
	"time"
)

// entry wraps a cached answer with expiry and insertion order tracking.
type entry struct {
	answer    string
	expiry    time.Time
	insertIdx int64
}

// AnswerCache keeps resolved answers keyed by normalized query so
// repeated questions skip the full resolution pipeline.
// Thread-safe with sync.RWMutex.
type AnswerCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a new AnswerCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *AnswerCache {
	return &AnswerCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// NormalizeKey collapses a raw query into its cache key: lower-cased
// with runs of whitespace reduced to single spaces.
func NormalizeKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Get returns a cached answer if found and not expired.
func (c *AnswerCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return e.answer, true
}

// Set stores an answer in the cache. Evicts the oldest entry if at capacity.
func (c *AnswerCache) Set(key, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		answer:    answer,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	// Evict oldest if at capacity
	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Len returns the number of live entries, expired or not.
func (c *AnswerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *AnswerCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
