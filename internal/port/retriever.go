package port

import (
	"context"

	"teamassist/internal/domain"
)

// Retriever searches the document corpus.
type Retriever interface {
	// Retrieve returns the top-k chunks for the question.
	Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)

	// RetrieveContext returns the assembled context string for the question.
	RetrieveContext(ctx context.Context, question string, k int) (string, error)
}
