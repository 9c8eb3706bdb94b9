// Package watch rebuilds the package whenever a watched source file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/epubpack/internal/config"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
)

// debounceWindow coalesces bursts of filesystem events (editors often emit
// several per save) into one rebuild.
const debounceWindow = 300 * time.Millisecond

// RebuildFunc runs one packaging pass. Failures are logged and the watch
// continues; the next change triggers another attempt.
type RebuildFunc func(ctx context.Context) error

// Paths derives the watch set from a configuration: the node manifest, every
// extra document and the logo. Duplicate parents collapse to one entry.
func Paths(cfg *config.Config) []string {
	var paths []string
	if cfg.Nodes != "" {
		paths = append(paths, cfg.Nodes)
	}
	paths = append(paths, cfg.Extras...)
	if cfg.Logo != "" {
		paths = append(paths, cfg.Logo)
	}
	return paths
}

// Run watches the configuration's source files and invokes rebuild after
// each (debounced) change until the context is canceled. An initial rebuild
// runs before watching starts so the output reflects the current sources.
func Run(ctx context.Context, cfg *config.Config, rebuild RebuildFunc) error {
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched, err := addWatchTargets(watcher, Paths(cfg))
	if err != nil {
		return err
	}
	if len(watched) == 0 {
		return fmt.Errorf("watch: nothing to watch (no nodes manifest, extras or logo configured)")
	}
	slog.Info("Watching for changes", logfields.Count(len(watched)))

	rebuildReq, trigger := newDebouncer()
	go rebuildWorker(ctx, rebuild, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(ev, watched, trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

// addWatchTargets registers the parent directory of every watched file
// (editors typically replace files, which drops a direct file watch) and
// returns the set of absolute file paths whose events matter.
func addWatchTargets(w *fsnotify.Watcher, paths []string) (map[string]struct{}, error) {
	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve watch path %s: %w", p, err)
		}
		if _, err := os.Stat(abs); err != nil {
			slog.Warn("Watch path missing; changes to it are picked up once it appears in a watched directory",
				logfields.Path(abs))
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			slog.Warn("Watch add failed", logfields.Path(dir), logfields.Error(err))
		}
	}
	return watched, nil
}

// handleEvent filters events down to the watched file set and triggers the
// debounced rebuild.
func handleEvent(ev fsnotify.Event, watched map[string]struct{}, trigger func()) {
	if shouldIgnore(ev.Name) {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if _, ok := watched[abs]; !ok {
		return
	}
	slog.Debug("Source change detected", logfields.Path(ev.Name))
	trigger()
}

// newDebouncer returns the rebuild request channel plus a trigger that arms
// (or re-arms) a timer; only after the window passes quietly is a request
// enqueued. The channel has capacity one, so bursts coalesce.
func newDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// rebuildWorker serializes rebuilds; requests arriving mid-build coalesce
// into the next queued request.
func rebuildWorker(ctx context.Context, rebuild RebuildFunc, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rebuildReq:
			if !ok {
				return
			}
			slog.Info("Change detected; repackaging")
			if err := rebuild(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// shouldIgnore filters hidden files and editor temp/swap artifacts.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
