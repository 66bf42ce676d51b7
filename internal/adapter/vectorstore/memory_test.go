package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamassist/internal/adapter/embedding"
	"teamassist/internal/domain"
)

var corpus = []string{
	"On-call this week: Scott Forsmann primary, Ravali Botta secondary.",
	"Current Sprint: Sprint 23. Goal: ship the rewards redemption API.",
	"Tech stack: Java Spring Boot services, Kafka, PostgreSQL, React.",
	"Database runbook: failover the PostgreSQL primary during maintenance.",
	"Team offsite planned at Machu Picchu next quarter.",
}

func buildStore(t *testing.T, texts []string, opts ...Option) *MemoryStore {
	t.Helper()
	e := embedding.NewHashEmbedder(128)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ID: fmt.Sprintf("c%d", i), Content: text, Index: i}
	}
	vecs, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	s, err := Build(e, chunks, vecs, opts...)
	require.NoError(t, err)
	return s
}

func ids(results []domain.ScoredChunk) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.ID
	}
	return out
}

func TestBuild_LengthMismatch(t *testing.T) {
	_, err := Build(embedding.NewHashEmbedder(8), []domain.Chunk{{ID: "a"}}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSearch_EmptyStore(t *testing.T) {
	s, err := Build(embedding.NewHashEmbedder(8), nil, nil)
	require.NoError(t, err)

	assert.Empty(t, s.Search(context.Background(), "anything", 3))
	assert.Zero(t, s.Len())
}

func TestSearch_ClampsK(t *testing.T) {
	s := buildStore(t, corpus)
	ctx := context.Background()

	assert.Len(t, s.Search(ctx, "sprint", 50), len(corpus))
	assert.Len(t, s.Search(ctx, "sprint", 2), 2)
	assert.Empty(t, s.Search(ctx, "sprint", 0))
	assert.Empty(t, s.Search(ctx, "sprint", -1))
}

func TestSearch_OrderedBySimilarity(t *testing.T) {
	s := buildStore(t, corpus)

	results := s.Search(context.Background(), "Who is on call this week?", len(corpus))
	require.Len(t, results, len(corpus))
	assert.Equal(t, "c0", results[0].Chunk.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_SelfRetrieval(t *testing.T) {
	s := buildStore(t, corpus)

	for i, text := range corpus {
		results := s.Search(context.Background(), text, 1)
		require.Len(t, results, 1)
		assert.Equal(t, fmt.Sprintf("c%d", i), results[0].Chunk.ID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	s := buildStore(t, []string{"kafka lag", "unrelated sprint note", "kafka lag", "kafka lag"})

	results := s.Search(context.Background(), "kafka lag", 3)
	assert.Equal(t, []string{"c0", "c2", "c3"}, ids(results))
}

func TestSearch_FallsBackOnSimilarityFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("Should fall back when similarity errors", func(t *testing.T) {
		s := buildStore(t, corpus, WithSimilarity(func(a, b []float32) (float64, error) {
			return 0, errors.New("boom")
		}))

		results := s.Search(ctx, "Who is on call this week?", 3)
		assert.Equal(t, []string{"c0", "c1", "c2"}, ids(results))
		for _, r := range results {
			assert.Zero(t, r.Score)
		}
	})

	t.Run("Should fall back when similarity panics", func(t *testing.T) {
		s := buildStore(t, corpus, WithSimilarity(func(a, b []float32) (float64, error) {
			panic("index out of range")
		}))

		assert.Equal(t, []string{"c0", "c1"}, ids(s.Search(ctx, "database", 2)))
	})

	t.Run("Should fall back on dimension mismatch", func(t *testing.T) {
		chunks := []domain.Chunk{{ID: "c0"}, {ID: "c1"}, {ID: "c2"}}
		s, err := Build(embedding.NewHashEmbedder(384), chunks, [][]float32{{1, 0}, {0, 1}, {1, 1}})
		require.NoError(t, err)

		assert.Equal(t, []string{"c0", "c1", "c2"}, ids(s.Search(ctx, "tech stack", 10)))
	})

	t.Run("Should fall back on NaN scores", func(t *testing.T) {
		s := buildStore(t, corpus, WithSimilarity(func(a, b []float32) (float64, error) {
			var zero float64
			return zero / zero, nil
		}))

		assert.Equal(t, []string{"c0"}, ids(s.Search(ctx, "x", 1)))
	})
}

type failingEmbedder struct {
	*embedding.HashEmbedder
}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("model unavailable")
}

func TestSearch_FallsBackOnQueryEmbeddingFailure(t *testing.T) {
	chunks := []domain.Chunk{{ID: "c0"}, {ID: "c1"}}
	s, err := Build(failingEmbedder{embedding.NewHashEmbedder(4)}, chunks, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}})
	require.NoError(t, err)

	assert.Equal(t, []string{"c0", "c1"}, ids(s.Search(context.Background(), "q", 5)))
}

func TestBuild_CopiesInputs(t *testing.T) {
	chunks := []domain.Chunk{{ID: "c0", Content: "a"}}
	vecs := [][]float32{{1, 0}}
	s, err := Build(embedding.NewHashEmbedder(2), chunks, vecs)
	require.NoError(t, err)

	chunks[0].ID = "mutated"
	vecs[0][0] = -1

	results := s.SearchVector(context.Background(), []float32{1, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "c0", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, 2, s.Dimension())
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	s := buildStore(t, corpus)
	want := ids(s.Search(context.Background(), "PostgreSQL failover", 2))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, ids(s.Search(context.Background(), "PostgreSQL failover", 2)))
		}()
	}
	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)

	score, err = CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, score)

	_, err = CosineSimilarity([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
