package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"teamassist/internal/adapter/chunker"
	"teamassist/internal/adapter/embedding"
	"teamassist/internal/adapter/fs"
	"teamassist/internal/adapter/parser"
	"teamassist/internal/port"
)

var defaultExtensions = []string{".txt", ".pdf", ".md", ".py", ".js", ".json", ".csv"}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newLoader() *LoadUseCase {
	return NewLoadUseCase(fs.NewWalker(defaultExtensions, []string{"**/.git/**"}), parser.NewDefaultRegistry())
}

func newIndex(t *testing.T, e port.Embedder) *IndexUseCase {
	t.Helper()
	c, err := chunker.NewRecursiveChunker(500, 50)
	require.NoError(t, err)
	return NewIndexUseCase(newLoader(), c, e, 32)
}

// countingEmbedder counts document batches and can be gated or made to fail.
type countingEmbedder struct {
	*embedding.HashEmbedder
	batches atomic.Int32
	fail    atomic.Bool
	gate    chan struct{}
	once    sync.Once
	entered chan struct{}
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{
		HashEmbedder: embedding.NewHashEmbedder(64),
		entered:      make(chan struct{}),
	}
}

func (e *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	e.once.Do(func() { close(e.entered) })
	if e.gate != nil {
		<-e.gate
	}
	if e.fail.Load() {
		return nil, errEmbedFailed
	}
	return e.HashEmbedder.EmbedDocuments(ctx, texts)
}
