package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/envy/internal/models"
)

// WatchOptions tunes the watch adapter.
type WatchOptions struct {
	// RenameWindow is how long a Rename waits for the Create of its new
	// name before it is treated as one-sided.
	RenameWindow time.Duration
	// QueueSize bounds the events waiting for the runner.
	QueueSize int
}

func (o WatchOptions) withDefaults() WatchOptions {
	if o.RenameWindow <= 0 {
		o.RenameWindow = 200 * time.Millisecond
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	return o
}

// Watch starts an fsnotify watcher on the synchronizer's root and feeds
// translated events to a single runner goroutine until ctx is cancelled.
// The runner applies one event at a time, so reloads of the same path never
// interleave. A failed apply is logged and the loop carries on.
//
// fsnotify reports a rename as Rename(old) followed by Create(new); the two
// are paired into one EventRename when they arrive within RenameWindow.
// Directories created at runtime are added to the watch list.
func Watch(ctx context.Context, syn *Synchronizer, logger *slog.Logger, opts WatchOptions) error {
	opts = opts.withDefaults()
	root := syn.Root()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	jobs := make(chan Event, opts.QueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range jobs {
			if err := syn.Apply(ev); err != nil {
				logger.Warn("watcher: apply failed",
					slog.String("kind", ev.Kind.String()),
					slog.String("error", err.Error()))
			}
		}
	}()
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	dispatch := func(kind EventKind, paths ...string) {
		select {
		case jobs <- Event{Kind: kind, Paths: paths}:
		case <-ctx.Done():
		}
	}

	// pending holds the old name of an unpaired Rename.
	var pending string
	renameTimer := time.NewTimer(opts.RenameWindow)
	renameTimer.Stop()
	defer renameTimer.Stop()

	flushPending := func() {
		if pending != "" {
			dispatch(EventRenameOne, pending)
			pending = ""
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-renameTimer.C:
			flushPending()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := ev.Name

			switch {
			case ev.Has(fsnotify.Create):
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if isHidden(path) {
						continue
					}
					if addErr := addDirsRecursive(w, path); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", path),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", path))
					for _, p := range notesUnder(path) {
						dispatch(EventCreate, p)
					}
					continue
				}
				// The new name of a renamed note may have any extension;
				// Move drops the entry when it is no longer a note.
				if pending != "" {
					renameTimer.Stop()
					from := pending
					pending = ""
					dispatch(EventRename, from, path)
					continue
				}
				if models.IsNotePath(path) {
					dispatch(EventCreate, path)
				}

			case ev.Has(fsnotify.Rename):
				// Only note renames are paired; anything else (editor temp
				// files, atomic-write scratch files) lets the following
				// Create stand on its own.
				if !models.IsNotePath(path) {
					continue
				}
				flushPending()
				pending = path
				renameTimer.Reset(opts.RenameWindow)

			case ev.Has(fsnotify.Remove):
				if models.IsNotePath(path) {
					dispatch(EventRemove, path)
				}

			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Chmod):
				if models.IsNotePath(path) {
					dispatch(EventModify, path)
				}

			default:
				dispatch(EventOther, path)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// notesUnder lists the .md files already present in a new directory,
// skipping hidden subdirectories as the startup walk does.
func notesUnder(dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && isHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && models.IsNotePath(path) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// addDirsRecursive adds dir and its non-hidden subdirectories to the
// watcher. Callers never pass a hidden dir other than the vault root.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// isHidden reports whether the last element of path starts with a dot.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
