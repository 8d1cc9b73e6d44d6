// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cache

import (
	"sync"
	"time"
)

type lruNode[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *lruNode[V]
	next      *lruNode[V]
}

// LRU is a capacity-bounded cache with a sliding TTL: every successful Get
// or Add pushes the entry's expiry out by ttl.
//
// The list is intrusive with sentinel head/tail nodes so that move-to-front
// and eviction never allocate.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*lruNode[V]
	head     *lruNode[V]
	tail     *lruNode[V]
	now      func() time.Time

	hits   int64
	misses int64
}

// NewLRU creates an LRU. Non-positive capacity defaults to 1000 and
// non-positive ttl to 30 minutes.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruNode[V], capacity),
		head:     &lruNode[V]{},
		tail:     &lruNode[V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	n, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	now := c.now()
	if !now.Before(n.expiresAt) {
		c.unlink(n)
		c.misses++
		return zero, false
	}
	n.expiresAt = now.Add(c.ttl)
	c.moveToFront(n)
	c.hits++
	return n.value, true
}

// GetOrCreate returns the value for key, creating it with create when absent
// or expired. Reports whether the value already existed.
func (c *LRU[V]) GetOrCreate(key string, create func() V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if n, ok := c.items[key]; ok {
		if now.Before(n.expiresAt) {
			n.expiresAt = now.Add(c.ttl)
			c.moveToFront(n)
			c.hits++
			return n.value, true
		}
		c.unlink(n)
	}
	c.misses++
	v := create()
	c.insertLocked(key, v, now)
	return v, false
}

// Add inserts or replaces key, evicting the least recently used entries
// beyond capacity.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if n, ok := c.items[key]; ok {
		n.value = value
		n.expiresAt = now.Add(c.ttl)
		c.moveToFront(n)
		return
	}
	c.insertLocked(key, value, now)
}

// Remove deletes key. Reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		c.unlink(n)
		return true
	}
	return false
}

// Len returns the number of entries, including ones not yet cleaned up.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for n := c.tail.prev; n != c.head; {
		prev := n.prev
		if !now.Before(n.expiresAt) {
			c.unlink(n)
			removed++
		}
		n = prev
	}
	return removed
}

// Stats returns hit and miss counts and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

func (c *LRU[V]) insertLocked(key string, value V, now time.Time) {
	n := &lruNode[V]{key: key, value: value, expiresAt: now.Add(c.ttl)}
	c.pushFront(n)
	c.items[key] = n
	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest == c.head {
			break
		}
		c.unlink(oldest)
	}
}

func (c *LRU[V]) pushFront(n *lruNode[V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRU[V]) moveToFront(n *lruNode[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	c.pushFront(n)
}

func (c *LRU[V]) unlink(n *lruNode[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	delete(c.items, n.key)
}
