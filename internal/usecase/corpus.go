package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

// Corpus is the process-wide handle on the current build. The first caller
// triggers the build; concurrent callers wait for and share it. Refresh
// rebuilds from disk and swaps the result in atomically, so readers always
// see either the old store or the new one.
type Corpus struct {
	index    *IndexUseCase
	dir      string
	current  atomic.Pointer[BuildResult]
	group    singleflight.Group
	mu       sync.RWMutex
	progress ProgressFunc
}

func NewCorpus(index *IndexUseCase, dir string) *Corpus {
	return &Corpus{
		index: index,
		dir:   dir,
	}
}

// SetProgress installs a callback for subsequent builds.
func (c *Corpus) SetProgress(fn ProgressFunc) {
	c.mu.Lock()
	c.progress = fn
	c.mu.Unlock()
}

func (c *Corpus) Dir() string { return c.dir }

// Result returns the current build, or nil before the first build finishes.
func (c *Corpus) Result() *BuildResult {
	return c.current.Load()
}

// Store returns the current vector store, building it on first use.
func (c *Corpus) Store(ctx context.Context) (port.VectorStore, error) {
	r, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.Store, nil
}

// Load builds the corpus unless a build already exists and returns it.
func (c *Corpus) Load(ctx context.Context) (*BuildResult, error) {
	if r := c.current.Load(); r != nil {
		return r, nil
	}
	return c.do(ctx, "load", func() (*BuildResult, error) {
		if r := c.current.Load(); r != nil {
			return r, nil
		}
		return c.rebuild(context.WithoutCancel(ctx))
	})
}

// Refresh rebuilds the corpus. On failure the previous build stays current.
func (c *Corpus) Refresh(ctx context.Context) (*BuildResult, error) {
	r, err := c.do(ctx, "refresh", func() (*BuildResult, error) {
		return c.rebuild(context.WithoutCancel(ctx))
	})
	if err != nil {
		logger.FromContext(ctx).Error("Corpus refresh failed, keeping previous build", "error", err)
		return nil, err
	}
	return r, nil
}

func (c *Corpus) do(ctx context.Context, key string, fn func() (*BuildResult, error)) (*BuildResult, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn()
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		r, ok := res.Val.(*BuildResult)
		if !ok || r == nil {
			return nil, errors.New("corpus build returned no result")
		}
		return r, nil
	}
}

func (c *Corpus) rebuild(ctx context.Context) (*BuildResult, error) {
	c.mu.RLock()
	progress := c.progress
	c.mu.RUnlock()

	r, err := c.index.Build(ctx, c.dir, progress)
	if err != nil {
		return nil, err
	}
	c.current.Store(r)
	return r, nil
}
