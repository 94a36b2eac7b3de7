// Package memory is the in-process tier of the transform cache: a bounded
// LRU safe for concurrent use from worker goroutines.
package memory

import (
	"container/list"
	"context"
	"sync"

	"promptforge/internal/domain"
)

type Cache struct {
	mu      sync.Mutex
	max     int
	order   *list.List               // front = most recently used
	entries map[string]*list.Element // key -> element holding *domain.CacheEntry
}

// New returns a cache bounded to max entries. The least recently used entry
// is evicted when the bound is exceeded.
func New(max int) *Cache {
	if max <= 0 {
		max = 256
	}
	return &Cache{max: max, order: list.New(), entries: make(map[string]*list.Element)}
}

func (c *Cache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	c.order.MoveToFront(el)
	e := *el.Value.(*domain.CacheEntry)
	return &e, nil
}

// Put stores entry under its key. Writing the same key twice is harmless:
// the value is simply replaced, so a race between two callers computing the
// same result costs a wasted call, not correctness.
func (c *Cache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *entry
	if el, ok := c.entries[entry.Key]; ok {
		el.Value = &cp
		c.order.MoveToFront(el)
		return nil
	}
	c.entries[entry.Key] = c.order.PushFront(&cp)
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*domain.CacheEntry).Key)
	}
	return nil
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
