// Package cache provides the bounded parse cache used by the resolver.
// Entries expire after a TTL and the oldest insertion is evicted first once
// the cache is full.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/nowwaveradio/smartdate/internal/constants"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a bounded, TTL limited map safe for concurrent use
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	order    []string // insertion order, oldest first
	capacity int
	ttl      time.Duration
	now      func() time.Time
	closed   bool
}

// Option configures a Cache
type Option func(*settings)

type settings struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// WithCapacity bounds the number of entries. Values below one use the default.
func WithCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL sets how long an entry stays valid. Values below one use the default.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock injects the time source used for insertion stamps and expiry
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty cache
func New[V any](opts ...Option) *Cache[V] {
	s := settings{
		capacity: constants.DefaultCacheCapacity,
		ttl:      constants.DefaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.capacity > constants.MaxCacheCapacity {
		s.capacity = constants.MaxCacheCapacity
	}

	return &Cache[V]{
		entries:  make(map[string]entry[V], s.capacity),
		order:    make([]string, 0, s.capacity),
		capacity: s.capacity,
		ttl:      s.ttl,
		now:      s.now,
	}
}

// Key builds the cache key for an input under a pattern and locale
func Key(text, pattern, code string) string {
	return strings.Join([]string{text, pattern, code}, "\x00")
}

// Get returns the value stored for key if it has not expired.
// Expired entries are dropped on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.removeLocked(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest insertion when full.
// After Close it does nothing.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if _, exists := c.entries[key]; exists {
		// Re-inserting refreshes the stamp and moves the key to the back of the queue
		c.removeLocked(key)
	}

	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
	c.order = append(c.order, key)
}

// Len returns the number of stored entries, including expired ones not yet dropped
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Close clears the cache and turns later Sets into no-ops
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.closed = true
	return nil
}

func (c *Cache[V]) clearLocked() {
	c.entries = make(map[string]entry[V], c.capacity)
	c.order = c.order[:0]
}

func (c *Cache[V]) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
