// Package cache provides a bounded in-memory LRU cache keyed by a
// comparable key, limited by entry count and by a cost metric (typically
// bytes), plus the specialized image and profile-summary caches built on it.
package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// Cache is a least-recently-used cache with two independent limits: a
// maximum entry count and a maximum total cost. A non-positive limit
// disables that bound. All methods are safe for concurrent use; mutation is
// serialized by an internal mutex.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	maxEntries int
	maxCost    int64
	totalCost  int64
	ll         *list.List // front = most recently used
	items      map[K]*list.Element
}

// New returns an empty cache bounded by maxEntries entries and maxCost
// total cost.
func New[K comparable, V any](maxEntries int, maxCost int64) *Cache[K, V] {
	return &Cache[K, V]{
		maxEntries: maxEntries,
		maxCost:    maxCost,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
	}
}

// Get returns the cached value for key and promotes it to most recently
// used. The second result is false on a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Set inserts or replaces the value for key with a cost of 1.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetCost(key, value, 1)
}

// SetCost inserts or replaces the value for key with an explicit cost, then
// evicts least-recently-used entries until both limits hold. An entry whose
// cost alone exceeds the cost limit is evicted immediately.
func (c *Cache[K, V]) SetCost(key K, value V, cost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		c.totalCost += cost - e.cost
		e.value = value
		e.cost = cost
		c.ll.MoveToFront(el)
	} else {
		el := c.ll.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
		c.items[key] = el
		c.totalCost += cost
	}

	for (c.maxEntries > 0 && c.ll.Len() > c.maxEntries) ||
		(c.maxCost > 0 && c.totalCost > c.maxCost) {
		c.evictOldest()
	}
}

// Remove deletes the entry for key, if present.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[K]*list.Element)
	c.totalCost = 0
}

// Len returns the current entry count.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Cost returns the current total cost.
func (c *Cache[K, V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost
}

func (c *Cache[K, V]) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.removeElement(el)
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[K, V])
	c.ll.Remove(el)
	delete(c.items, e.key)
	c.totalCost -= e.cost
}
