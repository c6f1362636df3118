// Package typecache memoises synthesized types by structural key.
//
// GetOrCreate runs the supplier at most once per key even when many
// goroutines ask for the same key at the same moment: concurrent callers
// wait on one in-flight synthesis and share its result. A failing supplier
// leaves nothing behind, so the next caller tries again. Entries are never
// evicted; the cache lives as long as the process.
package typecache

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/synth/internal/logger"
)

// Stats counts cache traffic.
type Stats struct {
	// Hits are lookups answered from the map.
	Hits int64
	// Misses are lookups that had to wait on or run a supplier.
	Misses int64
	// Synthesized counts successful supplier runs.
	Synthesized int64
	// Failures counts failed supplier runs.
	Failures int64
}

// Cache maps normalised keys to values of type V.
// The zero value is not usable; call New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	group   singleflight.Group

	hits        atomic.Int64
	misses      atomic.Int64
	synthesized atomic.Int64
	failures    atomic.Int64
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the cached value for key without creating one.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrCreate returns the value for key, running supplier if there is none.
// created is true only for the caller whose supplier produced the value.
// A supplier error is returned to every caller waiting on that run.
func (c *Cache[V]) GetOrCreate(key string, supplier func() (V, error)) (v V, created bool, err error) {
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, false, nil
	}
	c.misses.Add(1)

	var ran bool
	res, err, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have stored the key between our read and Do.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		ran = true
		v, err := supplier()
		if err != nil {
			c.failures.Add(1)
			logger.Logger.Debugw("synthesis failed", "key", key, "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		c.synthesized.Add(1)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), ran, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in no particular order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Synthesized: c.synthesized.Load(),
		Failures:    c.failures.Load(),
	}
}
