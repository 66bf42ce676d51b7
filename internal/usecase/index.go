package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"teamassist/internal/adapter/vectorstore"
	"teamassist/internal/domain"
	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

// ProgressFunc reports how many chunks of total have been embedded.
type ProgressFunc func(done, total int)

// IndexUseCase builds a searchable corpus: load, chunk, embed, store.
type IndexUseCase struct {
	loader    *LoadUseCase
	chunker   port.Chunker
	embedder  port.Embedder
	batchSize int
}

func NewIndexUseCase(loader *LoadUseCase, chunker port.Chunker, embedder port.Embedder, batchSize int) *IndexUseCase {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &IndexUseCase{
		loader:    loader,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// BuildResult is one complete, immutable corpus build.
type BuildResult struct {
	Store    *vectorstore.MemoryStore
	Stats    domain.Stats
	Skipped  []SkippedFile
	BuiltAt  time.Time
	Duration time.Duration
}

// Build runs the whole pipeline over dir. An empty or missing directory gives
// an empty store, not an error.
func (u *IndexUseCase) Build(ctx context.Context, dir string, progress ProgressFunc) (*BuildResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	loaded, err := u.loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	chunks := u.chunker.Split(loaded.Documents)

	vectors, err := u.embed(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.Build(u.embedder, chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to build vector store: %w", err)
	}

	stats := domain.Stats{
		FilesSeen:    loaded.FilesSeen,
		FilesLoaded:  loaded.FilesLoaded,
		FilesSkipped: len(loaded.Skipped),
		Documents:    len(loaded.Documents),
		Chunks:       len(chunks),
		Dimension:    store.Dimension(),
		AvgChunkLen:  avgChunkLen(chunks),
	}
	result := &BuildResult{
		Store:    store,
		Stats:    stats,
		Skipped:  loaded.Skipped,
		BuiltAt:  time.Now(),
		Duration: time.Since(start),
	}

	log.Info("Corpus built",
		"dir", dir,
		"files", stats.FilesLoaded,
		"skipped", stats.FilesSkipped,
		"chunks", stats.Chunks,
		"model", u.embedder.ModelName(),
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (u *IndexUseCase) embed(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += u.batchSize {
		end := min(start+u.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := u.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(end, len(chunks))
		}
	}
	return vectors, nil
}

func avgChunkLen(chunks []domain.Chunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c.Content)
	}
	return float64(total) / float64(len(chunks))
}
