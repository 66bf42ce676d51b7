package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"teamassist/internal/adapter/analyzer"
	"teamassist/internal/port"
)

const DefaultHashDimension = 384

// HashEmbedder maps text to a fixed-size vector by feature hashing stemmed
// terms and term pairs. It needs no model download, so it serves offline
// demos and tests. Similar wording gives similar vectors; paraphrase does not.
type HashEmbedder struct {
	dimension int
	tokenizer port.Tokenizer
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(true),
	}
}

func (h *HashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = h.embed(text)
	}
	return vectors, nil
}

func (h *HashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.embed(text), nil
}

func (h *HashEmbedder) Dimension() int { return h.dimension }

func (h *HashEmbedder) ModelName() string { return fmt.Sprintf("hash-%d", h.dimension) }

func (h *HashEmbedder) embed(text string) []float32 {
	features := h.tokenizer.Features(text)

	// Sum in a fixed order so rounding is identical on every call.
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	acc := make([]float64, h.dimension)
	for _, k := range keys {
		sum := xxhash.Sum64String(k)
		idx := sum % uint64(h.dimension)
		if sum>>63 == 1 {
			acc[idx] -= features[k]
		} else {
			acc[idx] += features[k]
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, h.dimension)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}
