package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/logger"
	"github.com/toyz/autoiface/internal/utils"
)

// Watcher regenerates contracts when sources under the watched patterns
// change. Events are debounced; each settled burst triggers one run.
type Watcher struct {
	generator *Generator
	scanner   *DirectoryScanner
	patterns  []string
	debounce  time.Duration
	extension string
	log       *zap.SugaredLogger

	// OnRun is called after every run, including the initial one
	OnRun func(GenerationSummary, error)
}

// NewWatcher creates a watcher driving gen
func NewWatcher(gen *Generator, patterns []string) *Watcher {
	return &Watcher{
		generator: gen,
		scanner:   NewDirectoryScanner(gen.cfg.Extension),
		patterns:  patterns,
		debounce:  gen.cfg.Watch.Debounce,
		extension: gen.cfg.Extension,
		log:       logger.Named("watch"),
	}
}

// Run generates once, then watches until ctx is cancelled. Run errors are
// handed to OnRun and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.FileSystemErrorCode, "failed to create file watcher", err)
	}
	defer fsw.Close()

	dirs, err := w.scanner.ScanDirectories(w.patterns)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.WrapFileSystemError("watch", dir, err)
		}
	}
	w.log.Infow("watching", "directories", len(dirs), "debounce", w.debounce)

	w.run(ctx)

	// Stop and Reset need no draining with the Go 1.23 timer semantics
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && w.recursive() && w.addDirectory(fsw, event.Name) {
				// files may have landed before the directory was watched
				timer.Reset(w.debounce)
				continue
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("change detected", "file", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.generator.loader.Forget(event.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.run(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", "error", err)
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// events were lost; nothing cached can be trusted
				w.generator.loader.Reset()
				timer.Reset(w.debounce)
			}
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	summary, err := w.generator.Generate(ctx, w.patterns)
	if err != nil {
		w.log.Warnw("run failed", "error", err)
	}
	if w.OnRun != nil {
		w.OnRun(summary, err)
	}
}

// relevant keeps writes, creations, removals and renames of input files
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return utils.IsSourceFile(filepath.Base(event.Name), w.extension)
}

// recursive reports whether any pattern asks for subdirectories
func (w *Watcher) recursive() bool {
	for _, p := range w.patterns {
		if _, rec := utils.SplitPattern(p); rec {
			return true
		}
	}
	return false
}

// addDirectory starts watching a newly created directory and everything
// below it. It reports whether path was a directory.
func (w *Watcher) addDirectory(fsw *fsnotify.Watcher, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	dirs, err := w.scanner.ScanDirectories([]string{path + "/..."})
	if err != nil {
		w.log.Warnw("cannot scan new directory", "path", path, "error", err)
		return true
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.log.Warnw("cannot watch directory", "path", dir, "error", err)
		}
	}
	return true
}
