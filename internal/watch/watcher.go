// Package watch observes the music root directory tree and coalesces
// filesystem activity into a generic change signal. It carries no event
// detail: a signal means connected clients should re-fetch state.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps an fsnotify watcher over the music root and every project
// subdirectory. Create/remove/rename/write events on files or directories
// emit one coalesced signal on C.
type Watcher struct {
	fs      *fsnotify.Watcher
	logger  *slog.Logger
	changes chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New starts watching root and its immediate subdirectories.
func New(root string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(root); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch music root: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("read music root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := fsWatcher.Add(filepath.Join(root, entry.Name())); err != nil {
			logger.Warn("failed to watch project directory", "project", entry.Name(), "error", err)
		}
	}

	w := &Watcher{
		fs:      fsWatcher,
		logger:  logger,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// C returns the coalesced change signal channel.
func (w *Watcher) C() <-chan struct{} {
	return w.changes
}

// Close stops the watcher; the signal channel stays open but goes quiet.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fs.Add(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			w.signal()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}
}

// signal performs a non-blocking send so a burst of filesystem events
// collapses into a single pending change.
func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
