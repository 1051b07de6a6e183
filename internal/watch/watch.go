// Package watch re-lints corpus files as they change on disk. It is a
// development loop, not a daemon: start it in a checkout, edit
// notebooks, see findings as you save. See docs/ARCHITECTURE.md
// § Watch Loop.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/lint"
	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-lints changed corpus files. Out, when set, receives the
// findings table after each pass; OnReport, when set, receives the
// report itself.
type Watcher struct {
	Root     string
	Cfg      types.Config
	Workers  int
	Debounce time.Duration
	Out      io.Writer
	OnReport func(*types.Report)

	mu      sync.Mutex
	pending map[string]bool
	relint  sync.Mutex
}

// Run watches the corpus roots until the context is canceled. New
// directories are added to the watch as they appear. Cancellation is a
// clean stop, not an error.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	watched, err := w.addRoots(fw)
	if err != nil {
		return err
	}
	logger.Info().
		Str("event", "watch_started").
		Int("dirs", watched).
		Msg("watching corpus roots")

	w.pending = make(map[string]bool)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("event", "watch_stopped").Msg("watch loop stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !w.excludedDir(filepath.Base(ev.Name)) {
						_ = w.addTree(fw, ev.Name)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.interesting(ev.Name) {
				continue
			}

			w.mu.Lock()
			w.pending[ev.Name] = true
			w.mu.Unlock()

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { w.firePending(ctx) })

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Str("event", "watch_error").Msg("watcher error")
		}
	}
}

// addRoots watches every directory under the configured corpus roots.
func (w *Watcher) addRoots(fw *fsnotify.Watcher) (int, error) {
	watched := 0
	for _, sub := range w.Cfg.Roots {
		dir := filepath.Join(w.Root, sub)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		n, err := w.addTreeCount(fw, dir)
		if err != nil {
			return watched, err
		}
		watched += n
	}
	return watched, nil
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	_, err := w.addTreeCount(fw, dir)
	return err
}

func (w *Watcher) addTreeCount(fw *fsnotify.Watcher, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		count++
		return nil
	})
	return count, err
}

func (w *Watcher) excludedDir(name string) bool {
	for _, e := range w.Cfg.Exclude {
		if name == e {
			return true
		}
	}
	return false
}

// interesting reports whether a changed path is a corpus file outside
// the excluded directories.
func (w *Watcher) interesting(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case corpus.NotebookExt, corpus.QmodExt:
	default:
		return false
	}
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.excludedDir(seg) {
			return false
		}
	}
	return true
}

// firePending lints the batch collected during the debounce window.
// Errors are logged, not fatal: the loop must survive bad saves.
func (w *Watcher) firePending(ctx context.Context) {
	w.mu.Lock()
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(files) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(files)

	w.relint.Lock()
	defer w.relint.Unlock()

	logger := log.WithComponentFromContext(ctx, "watch")
	rep, err := w.lintFiles(ctx, files)
	if err != nil {
		logger.Error().Err(err).Str("event", "relint_failed").Msg("relint pass failed")
		return
	}

	logger.Info().
		Str("event", "relint").
		Int("files", len(files)).
		Int("findings", len(rep.Findings)).
		Msg("relinted changed files")

	if w.Out != nil {
		_ = lint.WriteText(w.Out, rep)
	}
	if w.OnReport != nil {
		w.OnReport(rep)
	}
}

func (w *Watcher) lintFiles(ctx context.Context, files []string) (*types.Report, error) {
	full, err := corpus.Discover(w.Root, w.Cfg)
	if err != nil {
		return nil, err
	}
	target, err := corpus.FromPaths(w.Root, w.Cfg, files)
	if err != nil {
		return nil, err
	}
	reg, err := timeouts.Load(timeouts.ResolvePath(w.Root, w.Cfg))
	if err != nil {
		return nil, err
	}

	runner := &lint.Runner{
		Cfg:      w.Cfg,
		Registry: reg,
		Workers:  w.Workers,
		Names:    full.NotebookNames(),
	}
	return runner.Run(ctx, target)
}
