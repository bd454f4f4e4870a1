// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestMemoryCacheExpiration(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemory(0)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().CurrentSize)
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", "v", time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryCacheJanitorEvicts(t *testing.T) {
	c := NewMemory(10 * time.Millisecond).(*memoryCache)
	defer c.Stop()

	c.Set("k", "v", time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Stats().Evictions >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOp()
	c.Set("k", "v", time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Sets)
}
