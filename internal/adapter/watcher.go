package adapter

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// ProjectWatcher surfaces filesystem changes under a project root so the
// watch command can trigger rebuilds.
type ProjectWatcher interface {
	// Events delivers the path of each changed file.
	Events() <-chan m.Path
	// Errors delivers watcher failures.
	Errors() <-chan error
	// Close releases the underlying watches.
	Close() error
}

type fsnotifyWatcher struct {
	watcher *fsnotify.Watcher
	events  chan m.Path
	errors  chan error
}

// NewProjectWatcher watches root and every directory below it. New
// subdirectories created while watching are picked up automatically.
func NewProjectWatcher(root m.Path) (ProjectWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	err = filepath.WalkDir(string(root), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return w.Add(path)
		}

		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	pw := &fsnotifyWatcher{
		watcher: w,
		events:  make(chan m.Path, 16),
		errors:  make(chan error, 1),
	}

	go pw.run()

	return pw, nil
}

func (pw *fsnotifyWatcher) run() {
	defer close(pw.events)

	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}

			pw.handle(event)
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case pw.errors <- err:
			default:
			}
		}
	}
}

func (pw *fsnotifyWatcher) handle(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		// A new tab folder needs its own watch.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := pw.watcher.Add(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		select {
		case pw.events <- m.Path(event.Name):
		default:
			// A rebuild is already pending; dropping the event loses nothing.
		}
	}
}

// Events delivers the path of each changed file.
func (pw *fsnotifyWatcher) Events() <-chan m.Path {
	return pw.events
}

// Errors delivers watcher failures.
func (pw *fsnotifyWatcher) Errors() <-chan error {
	return pw.errors
}

// Close releases the underlying watches.
func (pw *fsnotifyWatcher) Close() error {
	return pw.watcher.Close()
}
