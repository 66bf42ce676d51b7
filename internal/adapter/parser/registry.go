package parser

import (
	"context"
	"path/filepath"
	"strings"

	"teamassist/internal/domain"
	"teamassist/internal/port"
)

// Registry dispatches to a parser by file extension, falling back to a
// default parser for every other extension.
type Registry struct {
	byExt    map[string]port.Parser
	fallback port.Parser
}

func NewRegistry(fallback port.Parser) *Registry {
	return &Registry{
		byExt:    make(map[string]port.Parser),
		fallback: fallback,
	}
}

// NewDefaultRegistry parses .pdf files with PDFParser and everything else as text.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(NewTextParser())
	r.Register(".pdf", NewPDFParser())
	return r
}

func (r *Registry) Register(ext string, p port.Parser) {
	r.byExt[strings.ToLower(ext)] = p
}

func (r *Registry) Parse(ctx context.Context, path string) ([]domain.Document, error) {
	if p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return p.Parse(ctx, path)
	}
	return r.fallback.Parse(ctx, path)
}
