package port

import "teamassist/internal/domain"

// Chunker splits documents into bounded, overlapping chunks.
type Chunker interface {
	Split(docs []domain.Document) []domain.Chunk
}
