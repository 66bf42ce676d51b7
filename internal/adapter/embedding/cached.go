package embedding

import (
	"context"

	"teamassist/internal/adapter/cache"
	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

// CachedEmbedder memoizes query vectors in memory and, when a disk cache is
// configured, document vectors across runs. It never changes results.
type CachedEmbedder struct {
	next    port.Embedder
	queries *cache.VectorCache
	disk    *cache.BoltCache
}

// NewCachedEmbedder wraps next; either cache may be nil.
func NewCachedEmbedder(next port.Embedder, queries *cache.VectorCache, disk *cache.BoltCache) *CachedEmbedder {
	return &CachedEmbedder{
		next:    next,
		queries: queries,
		disk:    disk,
	}
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c.queries != nil {
		if vec, ok := c.queries.Get(c.next.ModelName(), text); ok {
			return vec, nil
		}
	}
	vec, err := c.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	if c.queries != nil {
		c.queries.Put(c.next.ModelName(), text, vec)
	}
	return vec, nil
}

func (c *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if c.disk == nil || len(texts) == 0 {
		return c.next.EmbedDocuments(ctx, texts)
	}
	log := logger.FromContext(ctx)

	found, err := c.disk.GetMany(texts)
	if err != nil {
		log.Warn("Embedding cache read failed", "error", err)
		found = nil
	}

	vectors := make([][]float32, len(texts))
	var (
		missing    []string
		missingIdx []int
	)
	for i, text := range texts {
		if vec, ok := found[i]; ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	embedded, err := c.next.EmbedDocuments(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, idx := range missingIdx {
		vectors[idx] = embedded[j]
	}
	if err := c.disk.PutMany(missing, embedded); err != nil {
		log.Warn("Embedding cache write failed", "error", err)
	}
	log.Debug("Embedded documents", "cached", len(texts)-len(missing), "computed", len(missing))
	return vectors, nil
}

func (c *CachedEmbedder) Dimension() int    { return c.next.Dimension() }
func (c *CachedEmbedder) ModelName() string { return c.next.ModelName() }

func (c *CachedEmbedder) Close() error {
	if c.disk == nil {
		return nil
	}
	return c.disk.Close()
}
