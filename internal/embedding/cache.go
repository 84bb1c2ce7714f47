package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 4096

// Cache wraps an Embedder and remembers vectors by text hash.
type Cache struct {
	next  Embedder
	cache *lru.Cache[string, []float64]
}

// NewCache wraps next. A non-positive size selects a default.
func NewCache(next Embedder, size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, []float64](size)
	if err != nil {
		c, _ = lru.New[string, []float64](defaultCacheSize)
	}
	return &Cache{next: next, cache: c}
}

// Hash is the cache key for text after truncation.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Truncate(text)))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Configured() bool {
	return c.next.Configured()
}

// Embed returns a copy of the cached vector, or calls the wrapped Embedder
// and caches a successful result.
func (c *Cache) Embed(ctx context.Context, ch Chunk) ([]float64, error) {
	key := Hash(ch.Text)
	if v, ok := c.cache.Get(key); ok {
		return append([]float64(nil), v...), nil
	}

	v, err := c.next.Embed(ctx, ch)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]float64(nil), v...))
	return v, nil
}

func (c *Cache) Len() int {
	return c.cache.Len()
}
