package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheTTL  = 15 * time.Minute
	defaultCacheSize = 512
)

// responseCache remembers validated provider replies so a repeated utterance
// is not billed twice.
type responseCache struct {
	lru *expirable.LRU[string, Response]
}

// newResponseCache creates a cache holding at most size entries for ttl each.
func newResponseCache(size int, ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	return &responseCache{lru: expirable.NewLRU[string, Response](size, nil, ttl)}
}

// cacheKey hashes the exact prompt pair sent to the provider.
func cacheKey(systemPrompt, prompt string) string {
	sum := sha256.Sum256([]byte(systemPrompt + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *responseCache) get(key string) (Response, bool) {
	return c.lru.Get(key)
}

func (c *responseCache) set(key string, resp Response) {
	c.lru.Add(key, resp)
}
