package cli

import (
	"context"
	"errors"
	"fmt"

	"teamassist/config"
	"teamassist/internal/adapter/cache"
	"teamassist/internal/adapter/chunker"
	"teamassist/internal/adapter/dashboard"
	"teamassist/internal/adapter/directory"
	"teamassist/internal/adapter/embedding"
	"teamassist/internal/adapter/fs"
	"teamassist/internal/adapter/llm"
	"teamassist/internal/adapter/parser"
	"teamassist/internal/port"
	"teamassist/internal/usecase"
	"teamassist/pkg/logger"
)

// app holds the wired pipeline for one command invocation.
type app struct {
	cfg      *config.Config
	embedder port.Embedder
	corpus   *usecase.Corpus
	retrieve *usecase.RetrieveUseCase
	closers  []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg := GetConfig()

	chk, err := chunker.NewRecursiveChunker(cfg.Chunk.Size, cfg.Chunk.Overlap, cfg.Chunk.Separators...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	a := &app{cfg: cfg}
	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.embedder = embedder

	walker := fs.NewWalker(cfg.Loader.Extensions, cfg.Loader.Excludes)
	loader := usecase.NewLoadUseCase(walker, parser.NewDefaultRegistry())
	index := usecase.NewIndexUseCase(loader, chk, embedder, cfg.Embedding.BatchSize)

	a.corpus = usecase.NewCorpus(index, GetDocsDir())
	a.retrieve = usecase.NewRetrieveUseCase(a.corpus, usecase.NewAssembler())
	return a, nil
}

func (a *app) newEmbedder(ctx context.Context) (port.Embedder, error) {
	ec := a.cfg.Embedding
	base, err := embedding.New(ctx, embedding.Config{
		Provider:  ec.Provider,
		Model:     ec.Model,
		ModelsDir: config.ResolvePath(GetRootDir(), ec.ModelsDir),
		APIKey:    ec.APIKey(),
		Dimension: ec.Dimension,
		BatchSize: ec.BatchSize,
	})
	if err != nil {
		return nil, err
	}

	var queries *cache.VectorCache
	if ec.QueryCacheSize > 0 {
		queries, err = cache.NewVectorCache(ec.QueryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create query cache: %w", err)
		}
	}

	var disk *cache.BoltCache
	if ec.CachePath != "" {
		path := config.ResolvePath(GetRootDir(), ec.CachePath)
		disk, err = cache.OpenBoltCache(path, base.ModelName(), base.Dimension())
		if err != nil {
			return nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		logger.FromContext(ctx).Debug("Embedding cache opened", "path", path)
	}

	if queries == nil && disk == nil {
		return base, nil
	}
	cached := embedding.NewCachedEmbedder(base, queries, disk)
	a.closers = append(a.closers, cached.Close)
	return cached, nil
}

// newAsk wires the answer path. Without an API key there is no generator;
// the assistant answers from the demo rules and the corpus is never built,
// so the returned app is nil.
func newAsk(ctx context.Context) (*usecase.AskUseCase, *app, error) {
	cfg := GetConfig()
	gc := cfg.Generator

	demo, err := llm.LoadDemoResponder(gc.AssistantName, config.ResolvePath(GetRootDir(), cfg.Demo.RulesFile))
	if err != nil {
		return nil, nil, err
	}

	generator, err := newGenerator(ctx, gc)
	if err != nil {
		return nil, nil, err
	}
	if generator == nil {
		return usecase.NewAskUseCase(nil, nil, demo, cfg.Retrieve.TopK, gc.AssistantName), nil, nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewAskUseCase(a.retrieve, generator, demo, cfg.Retrieve.TopK, gc.AssistantName), a, nil
}

func newGenerator(ctx context.Context, gc config.GeneratorConfig) (port.Generator, error) {
	if gc.Provider == llm.ProviderDemo {
		return nil, nil
	}
	g, err := llm.New(llm.Config{
		Provider:     gc.Provider,
		Model:        gc.Model,
		APIKey:       gc.APIKey(),
		BaseURL:      gc.BaseURL,
		MaxTokens:    gc.MaxTokens,
		Temperature:  gc.Temperature,
		Timeout:      gc.Timeout,
		Organization: gc.Organization,
	})
	if errors.Is(err, llm.ErrNoAPIKey) {
		logger.FromContext(ctx).Info("No generator API key, running in demo mode", "env", gc.APIKeyEnv)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (a *app) Close() {
	if a == nil {
		return
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.GetDefault().Warn("Failed to close resource", "error", err)
		}
	}
}

func loadDirectory() (*directory.Directory, error) {
	return directory.Load(config.ResolvePath(GetRootDir(), GetConfig().UsersFile))
}

func loadDashboards() (*dashboard.Provider, error) {
	return dashboard.Load(config.ResolvePath(GetRootDir(), GetConfig().DashboardFile))
}
