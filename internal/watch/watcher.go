// Package watch serves a read-only live view of a repository: it observes
// ref and working-tree changes and pushes status deltas to connected
// dashboard clients over a WebSocket.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

const (
	debounceTime       = 100 * time.Millisecond
	statusPollInterval = 2 * time.Second
)

// Watcher observes a repository's metadata directory and working tree and
// invokes onChange (debounced) whenever something worth recomputing status
// over happens. It never mutates the repository.
type Watcher struct {
	repository *repo.Repository
	onChange   func()
	logger     *slog.Logger
}

// NewWatcher creates a Watcher for repository, calling onChange whenever a
// ref, HEAD, or working-tree change is detected.
func NewWatcher(repository *repo.Repository, onChange func()) *Watcher {
	return &Watcher{repository: repository, onChange: onChange, logger: slog.Default()}
}

// Run blocks, watching until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	metaDir := w.repository.MetaDir()
	if err := fsw.Add(filepath.Join(metaDir)); err != nil {
		return err
	}
	for _, sub := range []string{"refs/heads", "refs/tags"} {
		walkAndWatch(fsw, filepath.Join(metaDir, sub), w.logger)
	}

	go w.pollWorkingTree(ctx)
	w.watchLoop(ctx, fsw)
	return nil
}

func walkAndWatch(fsw *fsnotify.Watcher, dir string, logger *slog.Logger) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if fi.IsDir() {
			if addErr := fsw.Add(path); addErr != nil {
				logger.Warn("failed to watch directory", "dir", path, "err", addErr)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("failed to walk refs directory", "dir", dir, "err", err)
	}
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if shouldIgnoreEvent(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceTime, w.onChange)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

func (w *Watcher) pollWorkingTree(ctx context.Context) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	var lastSummary string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := w.repository.ComputeStatus()
			if err != nil {
				continue
			}
			summary := summarize(status)
			if summary == lastSummary {
				continue
			}
			lastSummary = summary
			w.onChange()
		}
	}
}

// summarize renders status as a canonical string for change detection.
// Map keys are sorted first so identical status always yields identical
// output regardless of iteration order.
func summarize(status *repo.Status) string {
	staged := make([]string, 0, len(status.Staged))
	for p := range status.Staged {
		staged = append(staged, p)
	}
	sort.Strings(staged)
	unstaged := make([]string, 0, len(status.Unstaged))
	for p := range status.Unstaged {
		unstaged = append(unstaged, p)
	}
	sort.Strings(unstaged)

	var b strings.Builder
	for _, p := range staged {
		b.WriteString("s:" + p + ";")
	}
	for _, p := range unstaged {
		b.WriteString("u:" + p + ";")
	}
	for _, p := range status.Untracked {
		b.WriteString("n:" + p + ";")
	}
	return b.String()
}

func shouldIgnoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	return strings.HasSuffix(base, ".lock")
}
