package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"teamassist/internal/domain"
)

// DefaultSeparators are tried in order: paragraphs, lines, words, runes.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

var (
	ErrInvalidSize    = errors.New("chunk size must be positive")
	ErrInvalidOverlap = errors.New("chunk overlap must be positive and smaller than chunk size")
)

// RecursiveChunker splits documents at the coarsest separator that yields
// pieces small enough, then prefixes every chunk after the first with the
// last overlap runes of the text before it. Lengths are measured in runes.
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
}

func NewRecursiveChunker(size, overlap int, separators ...string) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if overlap <= 0 || overlap >= size {
		return nil, fmt.Errorf("%w: got overlap %d for size %d", ErrInvalidOverlap, overlap, size)
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &RecursiveChunker{
		size:       size,
		overlap:    overlap,
		separators: append([]string(nil), separators...),
	}, nil
}

func (c *RecursiveChunker) Size() int    { return c.size }
func (c *RecursiveChunker) Overlap() int { return c.overlap }

// Split chunks every document in order. Chunk metadata is copied from the
// source document.
func (c *RecursiveChunker) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.splitDocument(doc)...)
	}
	return chunks
}

// span is a half-open rune range [start, end).
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

func (c *RecursiveChunker) splitDocument(doc domain.Document) []domain.Chunk {
	if strings.TrimSpace(doc.Content) == "" {
		return nil
	}
	text := []rune(doc.Content)
	if len(text) <= c.size {
		return []domain.Chunk{newChunk(doc, 0, 0, doc.Content)}
	}

	budget := c.size - c.overlap
	pieces := merge(c.atomize(text, span{0, len(text)}, c.separators, budget), c.size, budget)
	if n := len(pieces); n > 1 && isBlank(text[pieces[n-1].start:pieces[n-1].end]) {
		pieces = pieces[:n-1]
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		start := p.start
		if i > 0 {
			start = max(0, p.start-c.overlap)
		}
		chunks = append(chunks, newChunk(doc, i, start, string(text[start:p.end])))
	}
	return chunks
}

// atomize cuts sp into contiguous parts no longer than budget where possible.
// A part that still exceeds budget once separators run out is returned whole.
func (c *RecursiveChunker) atomize(text []rune, sp span, seps []string, budget int) []span {
	if sp.len() <= budget {
		return []span{sp}
	}
	for i, sep := range seps {
		if sep == "" {
			out := make([]span, 0, sp.len())
			for j := sp.start; j < sp.end; j++ {
				out = append(out, span{j, j + 1})
			}
			return out
		}
		parts := splitAfter(text, sp, []rune(sep))
		if len(parts) < 2 {
			continue
		}
		out := make([]span, 0, len(parts))
		for _, part := range parts {
			if part.len() <= budget {
				out = append(out, part)
				continue
			}
			out = append(out, c.atomize(text, part, seps[i+1:], budget)...)
		}
		return out
	}
	return []span{sp}
}

// splitAfter cuts sp after every occurrence of sep, keeping the separator at
// the end of the part it terminates.
func splitAfter(text []rune, sp span, sep []rune) []span {
	var parts []span
	start := sp.start
	for i := sp.start; i+len(sep) <= sp.end; {
		if hasPrefixAt(text, i, sep) {
			i += len(sep)
			parts = append(parts, span{start, i})
			start = i
			continue
		}
		i++
	}
	if start < sp.end {
		parts = append(parts, span{start, sp.end})
	}
	return parts
}

func hasPrefixAt(text []rune, i int, sep []rune) bool {
	for j, r := range sep {
		if text[i+j] != r {
			return false
		}
	}
	return true
}

// merge greedily joins adjacent parts while the result fits. The first piece
// carries no overlap prefix, so it may use the full chunk size.
func merge(parts []span, first, budget int) []span {
	if len(parts) == 0 {
		return nil
	}
	pieces := make([]span, 0, len(parts))
	limit := first
	cur := parts[0]
	for _, p := range parts[1:] {
		if p.end-cur.start <= limit {
			cur.end = p.end
			continue
		}
		pieces = append(pieces, cur)
		limit = budget
		cur = p
	}
	return append(pieces, cur)
}

func isBlank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func newChunk(doc domain.Document, index, start int, content string) domain.Chunk {
	return domain.Chunk{
		ID:         generateChunkID(doc.SourcePath, doc.Page, index),
		Content:    content,
		SourcePath: doc.SourcePath,
		Filename:   doc.Filename,
		FileType:   doc.FileType,
		Page:       doc.Page,
		Index:      index,
		Start:      start,
	}
}

func generateChunkID(source string, page, index int) string {
	data := fmt.Sprintf("%s:%d:%d", source, page, index)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
