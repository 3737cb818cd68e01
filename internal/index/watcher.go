package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher debounces filesystem events and triggers incremental
// reindexing of the changed files, grounded on the teacher's
// internal/indexer/watcher.go IndexerWatcher (fsnotify + single debounce
// timer + a pending-file set drained on fire).
type Watcher struct {
	coordinator *Coordinator
	discovery   *Discovery
	root        string
	debounce    time.Duration
	logger      zerolog.Logger

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher builds a Watcher rooted at root, recursively watching every
// directory under it.
func NewWatcher(coordinator *Coordinator, discovery *Discovery, root string, logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		coordinator: coordinator,
		discovery:   discovery,
		root:        root,
		debounce:    500 * time.Millisecond,
		logger:      logger,
		fsw:         fsw,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	if err := w.watchRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) watchRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if rel, ok := Normalize(w.root, path); ok && isExcludedDir(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func isExcludedDir(rel string) bool {
	switch rel {
	case ".git", "node_modules", "vendor":
		return true
	}
	return false
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.fsw.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	reindexCh := make(chan struct{}, 1)
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-w.stopCh:
			stopTimer(timer)
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.shouldProcess(event) {
				continue
			}
			pending[event.Name] = true

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchRecursively(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}

			stopTimer(timer)
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reindexCh <- struct{}{}:
				default:
				}
			})

		case <-reindexCh:
			w.reindexPending(ctx, pending)
			pending = make(map[string]bool)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	info, err := os.Stat(event.Name)
	if err == nil && info.IsDir() {
		return false
	}
	return true
}

func (w *Watcher) reindexPending(ctx context.Context, pending map[string]bool) {
	if len(pending) == 0 {
		return
	}
	start := time.Now()
	n := 0
	for path := range pending {
		rel, ok := Normalize(w.root, path)
		if !ok {
			continue
		}
		isCode := w.discovery.classifyChanged(rel)
		if _, err := os.Stat(path); err != nil {
			continue // removed; orphan sweep reconciles deletions separately
		}
		if _, err := w.coordinator.IndexFile(ctx, path, isCode); err != nil {
			w.logger.Warn().Err(err).Str("path", rel).Msg("incremental reindex failed")
			continue
		}
		n++
	}
	w.logger.Info().Int("files", n).Dur("elapsed", time.Since(start)).Msg("incremental reindex complete")
}
