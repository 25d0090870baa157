package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the docs directory in dev mode and drops the rendered
// page cache when a file changes. It also reports config file edits so the
// operator knows a restart is needed.
type Watcher struct {
	watcher    *fsnotify.Watcher
	docs       *docsHandler
	configPath string
	stdout     io.Writer
	stderr     io.Writer

	// Track last change time to debounce rapid changes
	mu         sync.Mutex
	lastChange time.Time
}

// NewWatcher creates a file watcher for the docs directory.
func NewWatcher(docs *docsHandler, configPath string, stdout, stderr io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:    fsWatcher,
		docs:       docs,
		configPath: configPath,
		stdout:     stdout,
		stderr:     stderr,
	}, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) error {
	if w.configPath != "" {
		configDir := filepath.Dir(w.configPath)
		if err := w.watcher.Add(configDir); err != nil {
			w.logError("failed to watch config dir %s: %v", configDir, err)
		} else {
			w.logInfo("watching config: %s", w.configPath)
		}
	}

	if w.docs != nil && w.docs.dir != "" {
		if err := w.watchDirRecursive(w.docs.dir); err != nil {
			w.logError("failed to watch docs dir %s: %v", w.docs.dir, err)
		} else {
			w.logInfo("watching docs: %s", w.docs.dir)
		}
	}

	go w.eventLoop(ctx)

	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	// Debounce duration - wait for rapid changes to settle
	const debounce = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Debounce rapid changes
			w.mu.Lock()
			if time.Since(w.lastChange) < debounce {
				w.mu.Unlock()
				continue
			}
			w.lastChange = time.Now()
			w.mu.Unlock()

			w.handleFileChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// handleFileChange processes a file change event
func (w *Watcher) handleFileChange(path string) {
	// Check if it's the config file
	if w.configPath != "" && filepath.Base(path) == filepath.Base(w.configPath) {
		w.logInfo("config changed: %s (restart server for config changes to take effect)", path)
		return
	}

	if strings.ToLower(filepath.Ext(path)) != ".md" {
		return
	}

	w.logInfo("docs changed: %s", path)
	if w.docs != nil {
		w.docs.Invalidate()
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
