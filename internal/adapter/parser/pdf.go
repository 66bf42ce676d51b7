package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"teamassist/internal/domain"
)

var ErrNotPDF = errors.New("file content is not a PDF")

// PDFParser extracts the plain text of a PDF, one document per non-empty page.
type PDFParser struct{}

func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

func (p *PDFParser) Parse(ctx context.Context, path string) (docs []domain.Document, err error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("%s: %w (detected %s)", path, ErrNotPDF, mtype.String())
	}

	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("failed to parse pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d of %s: %w", i, path, err)
		}
		text = normalizeNewlines(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Content:    text,
			SourcePath: path,
			Filename:   name,
			FileType:   domain.FileTypePDF,
			Page:       i,
		})
	}
	return docs, nil
}
