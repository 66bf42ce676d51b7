package usecase

import (
	"context"
	"fmt"

	"teamassist/internal/domain"
	"teamassist/internal/port"
)

// StoreSource hands out the current vector store.
type StoreSource interface {
	Store(ctx context.Context) (port.VectorStore, error)
}

// RetrieveUseCase answers "what does the corpus say about this question".
type RetrieveUseCase struct {
	source    StoreSource
	assembler *Assembler
}

func NewRetrieveUseCase(source StoreSource, assembler *Assembler) *RetrieveUseCase {
	if assembler == nil {
		assembler = NewAssembler()
	}
	return &RetrieveUseCase{
		source:    source,
		assembler: assembler,
	}
}

// Retrieve returns the top-k chunks for question, best first. It errors only
// when no store can be built.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	store, err := u.source.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return store.Search(ctx, question, k), nil
}

// RetrieveContext returns the top-k chunks for question as one context string.
// An empty corpus yields NoContextAvailable.
func (u *RetrieveUseCase) RetrieveContext(ctx context.Context, question string, k int) (string, error) {
	results, err := u.Retrieve(ctx, question, k)
	if err != nil {
		return "", err
	}
	return u.assembler.AssembleScored(results), nil
}
