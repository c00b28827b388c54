package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports that a collection changed on disk. An empty Kind means the
// change could not be attributed and every view should refresh.
type Event struct {
	Kind Kind
}

// WatchDelay is how long bursts of filesystem activity are coalesced.
var WatchDelay = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped rather than block the watcher.
func (w *Workspace) Watch(ctx context.Context, logger *slog.Logger) (<-chan Event, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := w.Init(); err != nil {
		return nil, fmt.Errorf("store: ensure workspace: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	dirs, err := collectDirs(w.Root)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("store: watcher close", "error", err)
			}
		}()

		pending := map[Kind]struct{}{}
		var fire <-chan time.Time
		enqueue := func(kind Kind) {
			pending[kind] = struct{}{}
			if fire == nil {
				fire = time.After(WatchDelay)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-fire:
				fire = nil
				for kind := range pending {
					select {
					case events <- Event{Kind: kind}:
					default:
						logger.Debug("store: dropped change event", "kind", kind)
					}
				}
				pending = map[Kind]struct{}{}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("store: watcher error", "error", err)
				enqueue("")
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if strings.HasPrefix(filepath.Base(evt.Name), ".tmp-") {
					continue
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						if err := watcher.Add(evt.Name); err != nil {
							logger.Warn("store: watch new directory", "path", evt.Name, "error", err)
						}
					}
				}
				kind, _ := w.kindForPath(evt.Name)
				enqueue(kind)
			}
		}
	}()
	return events, nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
