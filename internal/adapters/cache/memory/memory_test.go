package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain"
)

func TestGetMiss(t *testing.T) {
	c := New(4)
	e, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestPutGet(t *testing.T) {
	c := New(4)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "k1", Model: "m", Result: "r1"}))
	e, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "r1", e.Result)
}

func TestPutSameKeyTwice(t *testing.T) {
	c := New(4)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "k", Result: "first"}))
	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "k", Result: "second"}))

	assert.Equal(t, 1, c.Len())
	e, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", e.Result)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "a", Result: "1"}))
	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "b", Result: "2"}))

	// Touch a so b becomes the eviction candidate.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "c", Result: "3"}))
	assert.Equal(t, 2, c.Len())

	e, _ := c.Get(ctx, "b")
	assert.Nil(t, e)
	e, _ = c.Get(ctx, "a")
	assert.NotNil(t, e)
	e, _ = c.Get(ctx, "c")
	assert.NotNil(t, e)
}

func TestBoundHolds(t *testing.T) {
	c := New(8)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: fmt.Sprintf("k%d", i)}))
	}
	assert.Equal(t, 8, c.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	c := New(4)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, &domain.CacheEntry{Key: "k", Result: "original"}))

	e, err := c.Get(ctx, "k")
	require.NoError(t, err)
	e.Result = "mutated"

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Result)
}
