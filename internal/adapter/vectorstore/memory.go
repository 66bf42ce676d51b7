package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"teamassist/internal/domain"
	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

var (
	ErrLengthMismatch    = errors.New("chunks and embeddings differ in length")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// SimilarityFunc scores two vectors; higher is more similar.
type SimilarityFunc func(a, b []float32) (float64, error)

type Option func(*MemoryStore)

// WithSimilarity replaces cosine similarity.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.similarity = fn
		}
	}
}

// MemoryStore holds chunks and their embeddings in parallel slices and
// searches them by brute force. It is immutable once built, so concurrent
// searches need no locking; a corpus change builds a new store.
type MemoryStore struct {
	embedder   port.Embedder
	chunks     []domain.Chunk
	vectors    [][]float32
	dimension  int
	similarity SimilarityFunc
}

// Build creates a store where vectors[i] is the embedding of chunks[i].
// Inputs are copied. Queries are embedded with embedder.
func Build(embedder port.Embedder, chunks []domain.Chunk, vectors [][]float32, opts ...Option) (*MemoryStore, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d embeddings", ErrLengthMismatch, len(chunks), len(vectors))
	}
	s := &MemoryStore{
		embedder:   embedder,
		chunks:     append([]domain.Chunk(nil), chunks...),
		vectors:    make([][]float32, len(vectors)),
		similarity: CosineSimilarity,
	}
	for i, v := range vectors {
		s.vectors[i] = append([]float32(nil), v...)
	}
	if len(vectors) > 0 {
		s.dimension = len(vectors[0])
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *MemoryStore) Len() int { return len(s.chunks) }

func (s *MemoryStore) Dimension() int { return s.dimension }

// Search returns the k chunks most similar to query, best first; equal
// scores keep insertion order. k is clamped to the store size and k <= 0
// yields nothing. If scoring fails for any reason the first k chunks in
// insertion order are returned with a zero score and a warning is logged.
func (s *MemoryStore) Search(ctx context.Context, query string, k int) []domain.ScoredChunk {
	k = s.clamp(k)
	if k == 0 {
		return nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Warn("Query embedding failed, returning chunks in insertion order", "error", err, "k", k)
		return s.fallback(k)
	}
	return s.SearchVector(ctx, vec, k)
}

// SearchVector is Search for an already embedded query.
func (s *MemoryStore) SearchVector(ctx context.Context, query []float32, k int) []domain.ScoredChunk {
	k = s.clamp(k)
	if k == 0 {
		return nil
	}
	results, err := s.rank(query, k)
	if err != nil {
		logger.FromContext(ctx).Warn("Similarity search failed, returning chunks in insertion order", "error", err, "k", k)
		return s.fallback(k)
	}
	return results
}

func (s *MemoryStore) clamp(k int) int {
	if k <= 0 {
		return 0
	}
	return min(k, len(s.chunks))
}

func (s *MemoryStore) rank(query []float32, k int) (results []domain.ScoredChunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("similarity panicked: %v", r)
		}
	}()

	scored := make([]domain.ScoredChunk, len(s.chunks))
	for i, vec := range s.vectors {
		score, err := s.similarity(query, vec)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if math.IsNaN(score) {
			return nil, fmt.Errorf("chunk %d: similarity is NaN", i)
		}
		scored[i] = domain.ScoredChunk{Chunk: s.chunks[i], Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored[:k], nil
}

func (s *MemoryStore) fallback(k int) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, k)
	for i := 0; i < k; i++ {
		out[i] = domain.ScoredChunk{Chunk: s.chunks[i]}
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is all zeros.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
