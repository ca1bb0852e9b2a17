package llm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (c *responseCache) size() int {
	return c.lru.Len()
}

func (c *responseCache) clear() {
	c.lru.Purge()
}

func TestResponseCache(t *testing.T) {
	t.Run("basic operations", func(t *testing.T) {
		cache := newResponseCache(0, 5*time.Minute)
		defer cache.clear()

		_, found := cache.get("non-existent")
		assert.False(t, found)

		resp := Response{Amount: decimal.NewFromInt(200), Category: "food", Description: "dosa"}
		cache.set("key1", resp)

		retrieved, found := cache.get("key1")
		assert.True(t, found)
		assert.Equal(t, resp, retrieved)
		assert.Equal(t, 1, cache.size())

		cache.clear()
		assert.Equal(t, 0, cache.size())
		_, found = cache.get("key1")
		assert.False(t, found)
	})

	t.Run("expiration", func(t *testing.T) {
		cache := newResponseCache(0, 50*time.Millisecond)
		defer cache.clear()

		cache.set("key2", Response{Amount: decimal.NewFromInt(45)})

		_, found := cache.get("key2")
		assert.True(t, found)

		time.Sleep(100 * time.Millisecond)

		_, found = cache.get("key2")
		assert.False(t, found)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		cache := newResponseCache(2, time.Minute)
		defer cache.clear()

		cache.set("a", Response{Amount: decimal.NewFromInt(1)})
		cache.set("b", Response{Amount: decimal.NewFromInt(2)})
		_, _ = cache.get("a")
		cache.set("c", Response{Amount: decimal.NewFromInt(3)})

		assert.Equal(t, 2, cache.size())
		_, found := cache.get("b")
		assert.False(t, found)
		_, found = cache.get("a")
		assert.True(t, found)
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("sys", "prompt"), cacheKey("sys", "prompt"))
	assert.NotEqual(t, cacheKey("sys", "prompt"), cacheKey("sys", "prompt2"))
	assert.NotEqual(t, cacheKey("a", "bc"), cacheKey("ab", "c"))
	assert.Len(t, cacheKey("", ""), 64)
}
