package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// VectorCache is an in-memory LRU of embedding vectors keyed by model and text.
// Vectors are copied on the way in and out so callers may mutate them freely.
type VectorCache struct {
	entries *lru.Cache[string, []float32]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func NewVectorCache(maxSize int) (*VectorCache, error) {
	if maxSize <= 0 {
		maxSize = 100
	}
	entries, err := lru.New[string, []float32](maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector cache: %w", err)
	}
	return &VectorCache{entries: entries}, nil
}

// Key derives the cache key for text embedded by model.
func Key(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(hash[:16])
}

func (c *VectorCache) Get(model, text string) ([]float32, bool) {
	vec, ok := c.entries.Get(Key(model, text))
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneVector(vec), true
}

func (c *VectorCache) Put(model, text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	c.entries.Add(Key(model, text), cloneVector(vec))
}

func (c *VectorCache) Invalidate() {
	c.entries.Purge()
}

func (c *VectorCache) Size() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counters.
func (c *VectorCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func cloneVector(src []float32) []float32 {
	if len(src) == 0 {
		return nil
	}
	dst := make([]float32, len(src))
	copy(dst, src)
	return dst
}
