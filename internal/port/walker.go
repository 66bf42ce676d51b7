package port

import (
	"context"

	"teamassist/internal/domain"
)

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// Parser extracts document segments from one file.
type Parser interface {
	Parse(ctx context.Context, path string) ([]domain.Document, error)
}
