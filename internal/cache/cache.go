// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package cache provides a bounded, thread-safe TTL cache with least recently
// used eviction. It backs the TMDB response cache and the authorization
// decision cache.
package cache

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelview/internal/metrics"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1000

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache bounded to a fixed number of entries. When full, the
// least recently used entry is evicted. Expired entries are removed lazily.
type Cache[V any] struct {
	mu       sync.Mutex
	name     string
	ttl      time.Duration
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
	stats    Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// New creates a cache. name labels the Prometheus cache metrics.
func New[V any](name string, ttl time.Duration, capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		name:     name,
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key. Expired entries count as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.miss()
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !c.now().Before(e.expiresAt) {
		c.removeElement(el)
		c.stats.Evictions++
		c.miss()
		return zero, false
	}

	c.order.MoveToFront(el)
	c.stats.Hits++
	metrics.RecordCacheLookup(c.name, true)
	return e.value, true
}

// Set stores value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value with a custom TTL. A non-positive TTL is a no-op.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.capacity {
		c.removeElement(c.order.Back())
		c.stats.Evictions++
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	metrics.SetCacheEntries(c.name, c.order.Len())
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Evictions += int64(c.order.Len())
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	metrics.SetCacheEntries(c.name, 0)
}

// Len returns the number of stored entries, including expired ones not yet
// removed.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetStats returns a snapshot of the counters.
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.order.Len()
	return s
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache[V]) miss() {
	c.stats.Misses++
	metrics.RecordCacheLookup(c.name, false)
}

// removeElement must be called with c.mu held.
func (c *Cache[V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	c.order.Remove(el)
	metrics.SetCacheEntries(c.name, c.order.Len())
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
