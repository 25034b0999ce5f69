package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is an adjustable clock for TTL tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration, maxEntries int) (*FetchCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	return NewFetchCache(ttl, maxEntries, clock.now), clock
}

func TestFetchCacheHitWithinTTL(t *testing.T) {
	c, clock := newTestCache(5*time.Minute, 10)

	c.Put("k", "v")
	clock.advance(4 * time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestFetchCacheExpiresAfterTTL(t *testing.T) {
	c, clock := newTestCache(5*time.Minute, 10)

	c.Put("k", "v")
	clock.advance(5 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok, "an entry exactly at TTL is expired")
	assert.Equal(t, 0, c.Len(), "expired entries are dropped on read")
}

func TestFetchCacheEvictsOldestInserted(t *testing.T) {
	c, _ := newTestCache(time.Hour, 3)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Reads must not affect eviction order.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4)

	_, ok = c.Get("a")
	assert.False(t, ok, "oldest-inserted entry evicted regardless of reads")
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestFetchCacheRePutRefreshesPosition(t *testing.T) {
	c, _ := newTestCache(time.Hour, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // re-insert moves "a" to the newest slot
	c.Put("c", 3)  // evicts "b", now the oldest

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)

	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestKeyIsStableAcrossParamOrder(t *testing.T) {
	a := Key("RELIANCE", "ohlcv", map[string]string{"mode": "incremental", "since": "2024-01-10"})
	b := Key("RELIANCE", "ohlcv", map[string]string{"since": "2024-01-10", "mode": "incremental"})
	assert.Equal(t, a, b, "map iteration order must not change the key")

	c := Key("RELIANCE", "ohlcv", map[string]string{"mode": "full", "since": "2024-01-10"})
	assert.NotEqual(t, a, c)
}

func TestFetchCacheDistinctEntriesPerParams(t *testing.T) {
	c, _ := newTestCache(time.Hour, 10)

	for day := 1; day <= 3; day++ {
		key := Key("RELIANCE", "ohlcv", map[string]string{"since": fmt.Sprintf("2024-01-%02d", day)})
		c.Put(key, day)
	}
	assert.Equal(t, 3, c.Len())
}
