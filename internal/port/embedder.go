package port

import (
	"context"

	"teamassist/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedDocuments returns one vector per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query with the same model as the documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore searches an immutable set of embedded chunks.
type VectorStore interface {
	// Search returns up to k chunks ranked by similarity to the query.
	Search(ctx context.Context, query string, k int) []domain.ScoredChunk

	// Len returns the number of stored chunks.
	Len() int
}
