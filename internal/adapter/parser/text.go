package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"teamassist/internal/domain"
)

var (
	ErrBinaryContent   = errors.New("file content is not text")
	ErrInvalidEncoding = errors.New("file content is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextParser reads UTF-8 text files (plain text, markdown, source code, JSON, CSV)
// as a single document.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return []domain.Document{{
		Content:    content,
		SourcePath: path,
		Filename:   filepath.Base(path),
		FileType:   domain.FileTypeFromPath(path),
	}}, nil
}

func decodeText(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil
	}
	if !isTextMIME(mimetype.Detect(data)) {
		return "", ErrBinaryContent
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return normalizeNewlines(string(data)), nil
}

// isTextMIME reports whether m is text/plain or one of its descendants
// (JSON, CSV, source code and so on).
func isTextMIME(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
