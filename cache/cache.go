// Package cache provides the bounded in-memory primitives behind the
// preview service: a key/value store with insertion-order eviction and
// a registry of in-flight fetches used for request coalescing.
//
// Both types are safe for concurrent use and all operations are total:
// a Get on an absent key reports absence, never an error.
package cache

import (
	"container/list"
	"sync"
)

// Cache is a bounded key/value store with insertion-order (FIFO)
// eviction.
//
// When an insert would push the entry count past capacity, the
// oldest-inserted surviving entry is removed first, so size never
// exceeds capacity after any operation. Overwriting an existing key
// replaces its value but keeps its original insertion position;
// frequently rewritten entries gain no extra lifetime.
type Cache[V any] struct {
	mu  sync.Mutex
	cap int
	ll  *list.List // insertion order, front = oldest
	idx map[string]*list.Element
}

type entry[V any] struct {
	key string
	val V
}

// New returns an empty cache bounded to capacity entries.
// Panics if capacity < 1.
func New[V any](capacity int) *Cache[V] {
	if capacity < 1 {
		panic("cache: capacity must be positive")
	}
	return &Cache[V]{
		cap: capacity,
		ll:  list.New(),
		idx: make(map[string]*list.Element, capacity),
	}
}

// Get returns the value stored under key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[key]; ok {
		return el.Value.(*entry[V]).val, true
	}
	var zero V
	return zero, false
}

// Set stores val under key, evicting the oldest entry if the cache is
// full and key is new. Existing keys are overwritten in place.
func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[key]; ok {
		el.Value.(*entry[V]).val = val
		return
	}
	if c.ll.Len() >= c.cap {
		oldest := c.ll.Front()
		c.ll.Remove(oldest)
		delete(c.idx, oldest.Value.(*entry[V]).key)
	}
	c.idx[key] = c.ll.PushBack(&entry[V]{key: key, val: val})
}

// Invalidate removes key if present. Absent keys are a no-op.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[key]; ok {
		c.ll.Remove(el)
		delete(c.idx, key)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	clear(c.idx)
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Cap returns the fixed capacity.
func (c *Cache[V]) Cap() int {
	return c.cap
}
