// Package watcher turns the raw fsnotify event stream for the content
// directory into debounced "something changed" callbacks.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window within which bursts of filesystem events
// coalesce into a single change.
const DefaultDebounce = 200 * time.Millisecond

// ChangeHandler runs once per debounced batch of accepted events. Batches are
// processed serially: the handler finishes before the next batch is drained.
type ChangeHandler func(ctx context.Context)

type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange ChangeHandler
	logger   *slog.Logger
}

// New creates a watcher over root (recursively) that invokes onChange after
// each debounced batch of relevant events.
func New(root string, debounce time.Duration, onChange ChangeHandler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Start runs the event loop until ctx is cancelled. It blocks, so callers run
// it in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()

	// The timer is only live while a batch is pending.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := 0

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				// the watcher backing hot reload is gone for good
				w.logger.Error("file watcher event stream closed, hot reload disabled")
				return
			}
			if !accept(event) {
				continue
			}
			w.logger.Debug("file change detected", "op", event.Op.String(), "path", event.Name)

			// new directories must join the watch set to stay recursive
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						w.logger.Error("could not watch new directory", "path", event.Name, "err", err)
					}
				}
			}

			pending++
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.logger.Error("file watcher error stream closed, hot reload disabled")
				return
			}
			w.logger.Error("file watcher error", "err", err)

		case <-timer.C:
			if pending == 0 {
				continue
			}
			w.logger.Info("content change detected", "events", pending)
			pending = 0
			w.onChange(ctx)
		}
	}
}

// accept keeps create, write, remove and rename events and drops everything
// else: metadata-only changes (chmod) and editor noise such as Emacs lock
// files (.#name) and backup files (name~).
func accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) &&
		!event.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") {
		return false
	}

	return true
}
