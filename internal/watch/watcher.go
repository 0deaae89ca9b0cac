// Package watch triggers rescans when files under a directory change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/extractor"
)

// Watcher coalesces bursts of filesystem events into single callbacks.
type Watcher struct {
	debounce time.Duration
	log      *zap.Logger
	ready    chan struct{}
}

func New(debounce time.Duration, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		debounce: debounce,
		log:      log.With(zap.String("component", "watch")),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has registered the directory tree.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches root recursively and calls onChange once per burst of
// relevant events, after debounce of quiet. It blocks until ctx is done.
// onChange runs on the watcher goroutine; events arriving meanwhile are
// coalesced into the next burst.
func (w *Watcher) Run(ctx context.Context, root string, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, root); err != nil {
		return err
	}
	close(w.ready)
	w.log.Info("watching directory", zap.String("root", root))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fw, ev) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.log.Debug("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
			return true
		}
	}
	// a removed directory has no extension; treat it as a change too
	return extractor.IsSupported(ev.Name) || filepath.Ext(ev.Name) == ""
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			if path == root {
				return err
			}
			w.log.Debug("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
