package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// FetchCache memoizes provider responses within one run so identical fetch
// parameters never hit the network twice. Entries expire after a fixed TTL
// regardless of access; when full, the oldest-inserted entry is evicted.
// The cache says nothing about staleness — that is the sync tracker's job.
type FetchCache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]fetchEntry
	order   []string // insertion order, oldest first
}

type fetchEntry struct {
	value    interface{}
	storedAt time.Time
}

// NewFetchCache creates a fetch cache with the given TTL and capacity.
// A nil clock defaults to time.Now.
func NewFetchCache(ttl time.Duration, maxEntries int, now func() time.Time) *FetchCache {
	if now == nil {
		now = time.Now
	}
	return &FetchCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		entries:    make(map[string]fetchEntry),
	}
}

// Key builds a cache key from a symbol, data type and fetch parameters.
func Key(symbol, dataType string, params map[string]string) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, symbol, dataType)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for key, or (nil, false) on a miss or an
// expired entry.
func (c *FetchCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.remove(key)
		return nil, false
	}
	return entry.value, true
}

// Put stores a value, evicting the oldest-inserted entry when full.
func (c *FetchCache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.remove(c.order[0])
	}

	c.entries[key] = fetchEntry{value: value, storedAt: c.now()}
	c.order = append(c.order, key)
}

// Len returns the number of live entries.
func (c *FetchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from the map and the insertion-order list.
// Caller must hold the lock.
func (c *FetchCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
