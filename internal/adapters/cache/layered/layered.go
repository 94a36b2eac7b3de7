// Package layered stacks the in-memory transform cache over the sqlite one:
// reads fill the memory tier, writes go through to both.
package layered

import (
	"context"

	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

type Cache struct {
	fast ports.TransformCache
	slow ports.TransformCache
}

func New(fast, slow ports.TransformCache) *Cache { return &Cache{fast: fast, slow: slow} }

func (c *Cache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	if e, err := c.fast.Get(ctx, key); err == nil && e != nil {
		return e, nil
	}
	e, err := c.slow.Get(ctx, key)
	if err != nil || e == nil {
		return e, err
	}
	_ = c.fast.Put(ctx, e)
	return e, nil
}

func (c *Cache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	_ = c.fast.Put(ctx, entry)
	return c.slow.Put(ctx, entry)
}
