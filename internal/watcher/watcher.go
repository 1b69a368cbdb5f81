package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"golang.org/x/sync/semaphore"
)

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	settleDelay   time.Duration
	accept        func(path string) bool
	sem           *semaphore.Weighted
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// Start begins monitoring the input directory for new documents
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	if err := w.scanExisting(ctx); err != nil {
		w.logger.Warn(ctx, "Failed to scan existing files: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}

			// Only process CREATE events
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.accept(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New document detected: %s", event.Name)
			if err := w.sleep(ctx, w.settleDelay); err != nil {
				continue
			}
			if err := w.dispatch(ctx, event.Name); err != nil {
				continue
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// scanExisting dispatches documents that were already in the input
// directory before the watcher started, in name order.
func (w *implWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(w.inputDir, e.Name())
		if w.accept(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)

	for _, f := range files {
		w.logger.Info(ctx, "Existing document found: %s", f)
		if err := w.dispatch(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler in a goroutine once a semaphore slot is free.
// A path already being handled is skipped.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	if !w.claim(path) {
		w.logger.Debug(ctx, "Already processing: %s", path)
		return nil
	}

	if err := w.sem.Acquire(ctx, 1); err != nil {
		w.release(path)
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.Release(1)
		defer w.release(path)

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[path] {
		return false
	}
	w.inFlight[path] = true
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

func (w *implWatcher) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
