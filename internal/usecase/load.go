package usecase

import (
	"context"
	"fmt"

	"teamassist/internal/domain"
	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

// LoadUseCase reads every loadable file under a directory into documents.
type LoadUseCase struct {
	walker port.FileWalker
	parser port.Parser
}

func NewLoadUseCase(walker port.FileWalker, parser port.Parser) *LoadUseCase {
	return &LoadUseCase{
		walker: walker,
		parser: parser,
	}
}

// LoadResult contains the documents loaded and the files that were skipped.
type LoadResult struct {
	Documents   []domain.Document
	FilesSeen   int
	FilesLoaded int
	Skipped     []SkippedFile
}

type SkippedFile struct {
	Path   string
	Reason string
}

// Load parses every allow-listed file under dir. A file that fails to parse
// is logged and skipped; only a failure to list the directory is an error.
func (u *LoadUseCase) Load(ctx context.Context, dir string) (*LoadResult, error) {
	log := logger.FromContext(ctx)

	files, err := u.walker.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &LoadResult{FilesSeen: len(files)}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := u.parser.Parse(ctx, file.Path)
		if err != nil {
			log.Warn("Skipping unreadable file", "path", file.Path, "error", err)
			result.Skipped = append(result.Skipped, SkippedFile{Path: file.Path, Reason: err.Error()})
			continue
		}
		result.FilesLoaded++
		result.Documents = append(result.Documents, docs...)
	}

	log.Debug("Loaded documents", "dir", dir, "files", result.FilesSeen, "documents", len(result.Documents), "skipped", len(result.Skipped))
	return result, nil
}
