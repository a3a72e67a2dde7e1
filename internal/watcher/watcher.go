// Package watcher provides filesystem watching over the docs root so
// edited documents are re-indexed without a full scan. Deletions are
// deliberately ignored: the index never removes records implicitly.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dockb/dockb/internal/docstore"
)

// eventBufferSize is the size of the event channel buffer.
const eventBufferSize = 256

// DefaultDebounce is the window over which events for one path coalesce.
const DefaultDebounce = 500 * time.Millisecond

// Event is one debounced document change.
type Event struct {
	Category  docstore.Category
	Path      string
	Timestamp time.Time
}

// Watcher watches the docs root for markdown changes.
type Watcher struct {
	root     string
	debounce time.Duration

	fsw    *fsnotify.Watcher
	events chan Event
	errs   chan error

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
	stopCh  chan struct{}
}

// New creates a watcher over the given docs root.
func New(root string, debounce time.Duration) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs root: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:     absRoot,
		debounce: debounce,
		fsw:      fsw,
		events:   make(chan Event, eventBufferSize),
		errs:     make(chan error, 8),
		pending:  make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Events returns the debounced document change channel.
// Closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns non-fatal watcher errors. The watcher keeps running.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start watches the docs root recursively until Stop is called.
// Blocks; run it in a goroutine.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch docs root: %w", err)
	}

	for {
		select {
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// Stop stops the watcher and closes its channels. Safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.mu.Unlock()

	close(w.stopCh)
	err := w.fsw.Close()
	close(w.events)
	close(w.errs)
	return err
}

// handle filters and debounces one raw fsnotify event.
func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// New directories need to be added to the watch set
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			_ = w.addRecursive(event.Name)
		}
		return
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	category, relPath, ok := w.split(event.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	key := string(category) + "/" + relPath
	if timer, exists := w.pending[key]; exists {
		timer.Reset(w.debounce)
		return
	}
	w.pending[key] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, key)
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		select {
		case w.events <- Event{Category: category, Path: relPath, Timestamp: time.Now()}:
		default:
		}
	})
}

// split maps an absolute file path to its (category, relative path) pair.
func (w *Watcher) split(absPath string) (docstore.Category, string, bool) {
	rel, err := filepath.Rel(w.root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}

	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	return categoryForDir(parts[0]), parts[1], true
}

// categoryForDir reverses Category.Dir.
func categoryForDir(dir string) docstore.Category {
	switch dir {
	case docstore.CategoryReference.Dir():
		return docstore.CategoryReference
	case docstore.CategoryProjectSpec.Dir():
		return docstore.CategoryProjectSpec
	default:
		return docstore.Category(dir)
	}
}

// addRecursive adds a directory tree to the watch set.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
