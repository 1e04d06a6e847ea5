package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is emitted.
const DefaultDebounce = 100 * time.Millisecond

// IgnoreChecker decides which directories are watched and which file events
// are forwarded.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher watches a project tree for changes to candidate component files.
// Changes to the root .gitignore are always forwarded so ignore rules can be
// reloaded.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger
}

// NewWatcher registers every non-excluded directory under rootDir.
func NewWatcher(rootDir string, ignoreChecker IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(DefaultDebounce),
		ignoreChecker: ignoreChecker,
		rootDir:       rootDir,
		logger:        logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		w.watchDir(path)
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced batches. It is closed
// when the watcher stops.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// IsIgnoreFile reports whether path is the root .gitignore.
func (w *Watcher) IsIgnoreFile(path string) bool {
	return path == filepath.Join(w.rootDir, ".gitignore")
}

// Start listens for file system events until the watcher is closed. Call it
// in a goroutine.
func (w *Watcher) Start() {
	defer w.debouncer.Stop()
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				w.watchDir(path)
			}
			return
		}
	}

	// A removed directory has no extension, so removals bypass the candidate filter.
	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !removed && !w.IsIgnoreFile(path) && w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	op, ok := toEventOp(event)
	if !ok {
		return
	}
	w.debouncer.Add(path, op)
}

func (w *Watcher) watchDir(path string) {
	if err := w.fsWatcher.Add(path); err != nil {
		w.logger.Warn("failed to watch directory", "path", path, "error", err)
	}
}

func toEventOp(event fsnotify.Event) (EventOp, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return OpCreate, true
	case event.Has(fsnotify.Write):
		return OpWrite, true
	case event.Has(fsnotify.Remove):
		return OpRemove, true
	case event.Has(fsnotify.Rename):
		return OpRename, true
	}
	return 0, false
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
