package embedding

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamassist/internal/adapter/cache"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashEmbedder(t *testing.T) {
	ctx := context.Background()
	h := NewHashEmbedder(0)

	t.Run("Should default the dimension", func(t *testing.T) {
		assert.Equal(t, DefaultHashDimension, h.Dimension())
		assert.Equal(t, "hash-384", h.ModelName())
	})

	t.Run("Should be idempotent across calls and instances", func(t *testing.T) {
		a, err := h.EmbedQuery(ctx, "Who is on call this week?")
		require.NoError(t, err)
		b, err := h.EmbedQuery(ctx, "Who is on call this week?")
		require.NoError(t, err)
		c, err := NewHashEmbedder(384).EmbedQuery(ctx, "Who is on call this week?")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	})

	t.Run("Should not depend on batch composition", func(t *testing.T) {
		single, err := h.EmbedDocuments(ctx, []string{"Sprint 23 goals"})
		require.NoError(t, err)
		batch, err := h.EmbedDocuments(ctx, []string{"Kafka consumer lag", "Sprint 23 goals", "On-call rotation"})
		require.NoError(t, err)

		assert.Equal(t, single[0], batch[1])
		q, err := h.EmbedQuery(ctx, "Sprint 23 goals")
		require.NoError(t, err)
		assert.Equal(t, q, single[0])
	})

	t.Run("Should produce unit vectors", func(t *testing.T) {
		v, err := h.EmbedQuery(ctx, "database migration runbook")
		require.NoError(t, err)
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, norm, 1e-5)
	})

	t.Run("Should return a zero vector for text without terms", func(t *testing.T) {
		v, err := h.EmbedQuery(ctx, "the of and")
		require.NoError(t, err)
		assert.Len(t, v, 384)
		for _, x := range v {
			assert.Zero(t, x)
		}
	})

	t.Run("Should rank overlapping wording higher", func(t *testing.T) {
		vecs, err := h.EmbedDocuments(ctx, []string{
			"On-call this week: Scott Forsmann (primary), Ravali Botta (secondary).",
			"Current Sprint: Sprint 23. Goal: ship the rewards redemption API.",
		})
		require.NoError(t, err)
		q, err := h.EmbedQuery(ctx, "Who is on call this week?")
		require.NoError(t, err)

		assert.Greater(t, cosine(q, vecs[0]), cosine(q, vecs[1]))
	})

	t.Run("Should honor context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := h.EmbedDocuments(cctx, []string{"x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// fakeLangchain implements the langchaingo embeddings.Embedder interface.
type fakeLangchain struct {
	dim       int
	docCalls  int
	queryErr  error
	shortBy   int
	lastBatch []string
}

func (f *fakeLangchain) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	f.lastBatch = texts
	out := make([][]float32, 0, len(texts))
	for range texts[f.shortBy:] {
		out = append(out, make([]float32, f.dim))
	}
	return out, nil
}

func (f *fakeLangchain) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return make([]float32, f.dim), nil
}

func TestLangchainEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should take the dimension from the probe", func(t *testing.T) {
		e := Wrap(&fakeLangchain{dim: 8}, "fake-model", 384)
		require.NoError(t, e.probe(ctx))
		assert.Equal(t, 8, e.Dimension())
		assert.Equal(t, "fake-model", e.ModelName())
	})

	t.Run("Should surface probe failures", func(t *testing.T) {
		e := Wrap(&fakeLangchain{dim: 8, queryErr: errors.New("model not found")}, "fake-model", 8)
		assert.Error(t, e.probe(ctx))
	})

	t.Run("Should reject short responses", func(t *testing.T) {
		e := Wrap(&fakeLangchain{dim: 4, shortBy: 1}, "fake-model", 4)
		_, err := e.EmbedDocuments(ctx, []string{"a", "b"})
		assert.Error(t, err)
	})

	t.Run("Should skip empty batches", func(t *testing.T) {
		f := &fakeLangchain{dim: 4}
		vecs, err := Wrap(f, "fake-model", 4).EmbedDocuments(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, vecs)
		assert.Zero(t, f.docCalls)
	})
}

func TestNew(t *testing.T) {
	t.Run("Should build the hash provider offline", func(t *testing.T) {
		e, err := New(context.Background(), Config{Provider: "HASH", Dimension: 64})
		require.NoError(t, err)
		assert.Equal(t, 64, e.Dimension())
	})

	t.Run("Should fail init for unknown providers", func(t *testing.T) {
		_, err := New(context.Background(), Config{Provider: "word2vec"})
		assert.ErrorIs(t, err, ErrEmbedderInit)
	})
}

// countingEmbedder wraps HashEmbedder and counts calls.
type countingEmbedder struct {
	*HashEmbedder
	queries int
	docs    int
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.queries++
	return c.HashEmbedder.EmbedQuery(ctx, text)
}

func (c *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	c.docs += len(texts)
	return c.HashEmbedder.EmbedDocuments(ctx, texts)
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve repeated queries from memory", func(t *testing.T) {
		inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(32)}
		qc, err := cache.NewVectorCache(8)
		require.NoError(t, err)
		e := NewCachedEmbedder(inner, qc, nil)

		a, err := e.EmbedQuery(ctx, "kafka lag")
		require.NoError(t, err)
		b, err := e.EmbedQuery(ctx, "kafka lag")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Equal(t, 1, inner.queries)
	})

	t.Run("Should only embed documents missing from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "embeddings.db")
		inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(32)}

		disk, err := cache.OpenBoltCache(path, inner.ModelName(), inner.Dimension())
		require.NoError(t, err)
		e := NewCachedEmbedder(inner, nil, disk)

		first, err := e.EmbedDocuments(ctx, []string{"sprint 23", "on call"})
		require.NoError(t, err)
		require.NoError(t, e.Close())

		disk, err = cache.OpenBoltCache(path, inner.ModelName(), inner.Dimension())
		require.NoError(t, err)
		e = NewCachedEmbedder(inner, nil, disk)
		defer e.Close()

		second, err := e.EmbedDocuments(ctx, []string{"on call", "tech stack", "sprint 23"})
		require.NoError(t, err)

		assert.Equal(t, 3, inner.docs)
		assert.Equal(t, first[0], second[2])
		assert.Equal(t, first[1], second[0])
		direct, err := inner.HashEmbedder.EmbedQuery(ctx, "tech stack")
		require.NoError(t, err)
		assert.Equal(t, direct, second[1])
	})
}
