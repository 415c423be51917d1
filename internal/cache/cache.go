// Package cache implements PathCache: a bounded, TTL-expiring,
// strict-LRU cache in front of any keyed decision function, built over
// container/list the way an in-memory LRU is conventionally structured
// in Go.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaymesh/switchboard/pkg/models"
)

const (
	// DefaultMaxSize is the default maximum number of cached entries.
	DefaultMaxSize = 1000
	// DefaultTTL is the default entry lifetime.
	DefaultTTL = 5 * time.Minute
)

// Decide computes a RoutingDecision for payload when it is not already
// cached, or has expired.
type Decide func(payload string) (models.RoutingDecision, error)

type cacheEntry struct {
	key       string
	decision  models.RoutingDecision
	expiresAt time.Time
}

// PathCache wraps a Decide function with a bounded, LRU-evicted, TTL-
// expiring cache keyed by payload string. The zero value is not usable;
// use New.
type PathCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	hits    atomic.Int64
	misses  atomic.Int64
	now     func() time.Time
}

// Option configures a PathCache at construction time.
type Option func(*PathCache)

// WithMaxSize overrides DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(c *PathCache) { c.maxSize = n }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *PathCache) { c.ttl = ttl }
}

// New creates a PathCache with the given defaults, overridable via opts.
func New(opts ...Option) *PathCache {
	c := &PathCache{
		maxSize: DefaultMaxSize,
		ttl:     DefaultTTL,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decide returns the cached decision for payload if present and unexpired,
// touching its LRU recency; otherwise it calls compute, stores the result
// (if err is nil), and returns it. A concurrent writer that wins the race
// to insert first is never overwritten by a slower computation for the
// same key (double-checked insertion under the cache's lock).
func (c *PathCache) Decide(payload string, compute Decide) (models.RoutingDecision, error) {
	if decision, ok := c.lookup(payload); ok {
		c.hits.Add(1)
		return decision, nil
	}
	c.misses.Add(1)

	decision, err := compute(payload)
	if err != nil {
		return models.RoutingDecision{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, exists := c.entries[payload]; exists {
		entry := elem.Value.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			c.order.MoveToFront(elem)
			return entry.decision, nil
		}
	}
	c.insertLocked(payload, decision)
	return decision, nil
}

// lookup returns the cached decision for key if present and unexpired,
// and moves it to the front of the LRU order.
func (c *PathCache) lookup(key string) (models.RoutingDecision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return models.RoutingDecision{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, key)
		return models.RoutingDecision{}, false
	}
	c.order.MoveToFront(elem)
	return entry.decision, true
}

// insertLocked stores decision for key, evicting the least-recently-used
// entry if the cache is at capacity. Caller must hold c.mu.
func (c *PathCache) insertLocked(key string, decision models.RoutingDecision) {
	entry := &cacheEntry{key: key, decision: decision, expiresAt: c.now().Add(c.ttl)}
	elem := c.order.PushFront(entry)
	c.entries[key] = elem

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Stats is a point-in-time snapshot of cache size and hit/miss counters.
type Stats struct {
	Size    int
	Hits    int64
	Misses  int64
	HitRate float64
}

// Stats returns a snapshot of the cache's current statistics.
func (c *PathCache) Stats() Stats {
	c.mu.Lock()
	size := c.order.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{Size: size, Hits: hits, Misses: misses, HitRate: hitRate}
}
