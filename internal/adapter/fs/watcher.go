package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"teamassist/pkg/logger"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls onChange once a burst of file events under a directory tree
// has been quiet for the debounce delay.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(ctx context.Context)
	watcher  *fsnotify.Watcher
}

func NewWatcher(root string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run blocks until ctx is canceled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	log := logger.FromContext(ctx)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := func() { w.onChange(ctx) }
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		_ = w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			log.Debug("Detected docs change, debouncing", "file", event.Name, "op", event.Op.String())
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrClosed) {
				log.Error("Watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
