package ml

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifacts logs a warning whenever files in the artifact directory
// change on disk. Artifacts are never hot-swapped; a changed bundle takes
// effect only after a restart, and the warning makes that drift visible.
func WatchArtifacts(ctx context.Context, dir string, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Warn("artifact file changed on disk; restart required for it to take effect",
						zap.String("file", event.Name),
						zap.String("op", event.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
