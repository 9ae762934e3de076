package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/topicd/internal/topic"
)

// Watcher watches a project directory and rescans it whenever entries
// are created, removed, or renamed. Each rescan result is delivered to
// the update callback.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	update  func(*topic.Tree)
	logger  *zap.Logger
	stop    chan struct{}
}

// NewWatcher creates a watcher for root. update is invoked with the fresh
// tree after every structural change; it must be safe to call from the
// watcher goroutine.
func NewWatcher(root string, update func(*topic.Tree), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		watcher: fsw,
		update:  update,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins processing events until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go w.processEvents(ctx)
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	const structural = fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&structural == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			w.handleChange(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleChange(event fsnotify.Event) {
	// New directories need their own watch before the rescan so nested
	// changes are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("could not watch new directory",
					zap.String("path", event.Name),
					zap.Error(err))
			}
		}
	}

	tree, err := Scan(w.root)
	if err != nil {
		w.logger.Warn("rescan after change failed",
			zap.String("root", w.root),
			zap.Error(err))
		return
	}

	w.logger.Debug("project structure updated",
		zap.String("root", w.root),
		zap.String("trigger", event.Name))
	w.update(tree)
}

// addRecursive watches dir and every non-hidden subdirectory beneath it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
