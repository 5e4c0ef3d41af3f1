// Package watcher monitors the subtitle drop directory and hands new
// SRT files to a handler with bounded concurrency.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dkrasnov/tvcut/internal/logger"
)

// Handler processes one newly dropped subtitle file.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir         string
	handler     Handler
	log         *slog.Logger
	fs          *fsnotify.Watcher
	settleDelay time.Duration
	semaphore   chan struct{}
	wg          sync.WaitGroup
}

func New(dir string, handler Handler, log *slog.Logger, maxConcurrent int, settleDelay time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if settleDelay <= 0 {
		settleDelay = 500 * time.Millisecond
	}

	return &Watcher{
		dir:         dir,
		handler:     handler,
		log:         log,
		fs:          fs,
		settleDelay: settleDelay,
		semaphore:   make(chan struct{}, maxConcurrent),
	}, nil
}

// Run blocks until ctx is cancelled, dispatching every created or
// renamed-in .srt file to the handler. In-flight handlers are waited
// for on shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watching for subtitles",
		slog.String("dir", w.dir),
		slog.Int("max_concurrent", cap(w.semaphore)))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("waiting for in-flight episodes")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			// Files renamed into the directory arrive as Create; the
			// Rename op fires for the old path on the way out.
			if !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !isSubtitleFile(event.Name) {
				continue
			}
			w.log.Info("new subtitle file", slog.String("path", event.Name))

			// Let the writer finish before we read.
			time.Sleep(w.settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.log.Error("episode failed", slog.String("path", path), logger.Err(err))
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("watcher error", logger.Err(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func isSubtitleFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}
