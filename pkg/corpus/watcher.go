package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a corpus file or directory and invokes a callback after
// changes settle. Events are debounced so editor write bursts and multi-file
// saves trigger one reload, not many.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	isDir    bool
	debounce time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for the given corpus path. When path is a
// file, its parent directory is watched so atomic-rename saves are seen.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch path %q: %w", path, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	watchTarget := path
	if !info.IsDir() {
		watchTarget = filepath.Dir(path)
	}
	if err := fsw.Add(watchTarget); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", watchTarget, err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "corpus-watcher"),
		path:     filepath.Clean(path),
		isDir:    info.IsDir(),
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, invoking onChange after each settled burst of relevant
// filesystem events, until the context is cancelled or Stop is called.
// onChange errors are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	defer w.watcher.Close()

	w.logger.Info("corpus watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("corpus watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("corpus watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("corpus file event", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("corpus watch error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := onChange(); err != nil {
				w.logger.Error("corpus reload failed", "error", err)
			}
		}
	}
}

// Stop ends a running Watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// relevant filters events down to content changes of corpus documents.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if !w.isDir {
		return name == w.path
	}
	base := filepath.Base(name)
	if len(base) > 0 && base[0] == '.' {
		return false
	}
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
