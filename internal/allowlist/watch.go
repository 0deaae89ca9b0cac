package allowlist

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the allowlist whenever its file changes, until ctx is
// done. The parent directory is watched so that editors replacing the file
// atomically are handled. Setup errors are returned immediately.
func (a *Allowlist) Watch(ctx context.Context) error {
	if a.path == "" {
		return errors.New("allowlist has no backing file")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(a.path)); err != nil {
		w.Close()
		return err
	}

	target := filepath.Clean(a.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := a.Reload(); err != nil {
					a.log.Warn("allowlist reload failed", zap.Error(err))
					continue
				}
				a.log.Info("allowlist reloaded", zap.String("path", a.path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.log.Warn("allowlist watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
