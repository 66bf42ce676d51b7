package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/embeddings/cybertron"
	"github.com/tmc/langchaingo/llms/openai"

	"teamassist/internal/port"
)

// ErrEmbedderInit marks failures to construct or load an embedding model.
// Callers treat it as fatal: no corpus can be built without embeddings.
var ErrEmbedderInit = errors.New("failed to initialize embedding provider")

const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

type Config struct {
	Provider  string
	Model     string
	ModelsDir string
	APIKey    string
	BaseURL   string
	Dimension int
	BatchSize int
}

// New builds the configured provider. Model-backed providers embed a probe
// string so a missing model or bad credentials fail here, not mid-build.
func New(ctx context.Context, cfg Config) (port.Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == ProviderHash {
		return NewHashEmbedder(cfg.Dimension), nil
	}

	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}

	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch provider {
	case ProviderLocal:
		client, err = newLocalClient(cfg)
	case ProviderOpenAI:
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: provider %q is not supported", ErrEmbedderInit, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmbedderInit, provider, err)
	}

	impl, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmbedderInit, provider, err)
	}

	e := Wrap(impl, cfg.Model, cfg.Dimension)
	if err := e.probe(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s model %q: %w", ErrEmbedderInit, provider, cfg.Model, err)
	}
	return e, nil
}

func newLocalClient(cfg Config) (embeddings.EmbedderClient, error) {
	opts := make([]cybertron.Option, 0, 2)
	if model := strings.TrimSpace(cfg.Model); model != "" {
		opts = append(opts, cybertron.WithModel(model))
	}
	if cfg.ModelsDir != "" {
		opts = append(opts, cybertron.WithModelsDir(cfg.ModelsDir))
	}
	return cybertron.NewCybertron(opts...)
}

func newOpenAIClient(cfg Config) (embeddings.EmbedderClient, error) {
	opts := []openai.Option{openai.WithEmbeddingModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// LangchainEmbedder adapts a langchaingo embedder to port.Embedder.
type LangchainEmbedder struct {
	impl      embeddings.Embedder
	model     string
	dimension int
}

func Wrap(impl embeddings.Embedder, model string, dimension int) *LangchainEmbedder {
	return &LangchainEmbedder{
		impl:      impl,
		model:     model,
		dimension: dimension,
	}
}

func (e *LangchainEmbedder) probe(ctx context.Context) error {
	vec, err := e.impl.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return errors.New("model returned an empty embedding")
	}
	e.dimension = len(vec)
	return nil
}

func (e *LangchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents with %s: %w", e.model, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", e.model, len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *LangchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query with %s: %w", e.model, err)
	}
	return vec, nil
}

func (e *LangchainEmbedder) Dimension() int    { return e.dimension }
func (e *LangchainEmbedder) ModelName() string { return e.model }
