package usecase

import (
	"strings"

	"teamassist/internal/domain"
)

const (
	// ContextSeparator sits between chunks in an assembled context.
	ContextSeparator = "\n\n---\n\n"

	// NoContextAvailable is the whole context when retrieval found nothing.
	NoContextAvailable = "No relevant context available."
)

// Assembler joins retrieved chunks into the context string sent to a generator.
type Assembler struct {
	separator string
}

func NewAssembler() *Assembler {
	return &Assembler{separator: ContextSeparator}
}

// Assemble concatenates chunk contents in the order given.
func (a *Assembler) Assemble(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return NoContextAvailable
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, a.separator)
}

func (a *Assembler) AssembleScored(results []domain.ScoredChunk) string {
	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return a.Assemble(chunks)
}
