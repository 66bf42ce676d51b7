package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamassist/internal/domain"
)

func TestLoadUseCase_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Should load nothing when no file matches the allow-list", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "diagram.png", "not really a png")
		writeDoc(t, dir, "notes.docx", "word file")

		result, err := newLoader().Load(ctx, dir)
		require.NoError(t, err)
		assert.Empty(t, result.Documents)
		assert.Zero(t, result.FilesSeen)
	})

	t.Run("Should create a missing directory and return nothing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "docs")

		result, err := newLoader().Load(ctx, dir)
		require.NoError(t, err)
		assert.Empty(t, result.Documents)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Should skip unreadable files and keep going", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "team_info.txt", "Current Sprint: Sprint 23")
		writeDoc(t, dir, "logo.txt", string([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}))
		writeDoc(t, dir, "broken.pdf", "this is not a pdf")

		result, err := newLoader().Load(ctx, dir)
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "team_info.txt", result.Documents[0].Filename)
		assert.Equal(t, 3, result.FilesSeen)
		assert.Equal(t, 1, result.FilesLoaded)
		assert.Len(t, result.Skipped, 2)
	})

	t.Run("Should tag documents from nested directories", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "runbooks/kafka.md", "# Kafka\nRestart the consumer group.")
		writeDoc(t, dir, ".git/config", "ignored")

		result, err := newLoader().Load(ctx, dir)
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		doc := result.Documents[0]
		assert.Equal(t, filepath.Join(dir, "runbooks", "kafka.md"), doc.SourcePath)
		assert.Equal(t, "kafka.md", doc.Filename)
		assert.Equal(t, domain.FileTypeMarkdown, doc.FileType)
	})

	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "a.txt", "alpha")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newLoader().Load(cctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
