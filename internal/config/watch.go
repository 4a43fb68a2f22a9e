package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// WatchCommunities calls onChange whenever the communities file at path is
// written, created or replaced. The parent directory is watched so that
// editors and ConfigMap updates that swap the file are seen as well.
// Blocks until ctx is cancelled.
func WatchCommunities(ctx context.Context, path string, onChange func()) error {
	log := logr.FromContextOrDiscard(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve communities file %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch communities file %s: %w", absPath, err)
	}

	log.Info("Started watching communities file", "path", absPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Info("Communities file changed", "op", event.Op.String())
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Error(err, "Communities file watcher error")
		}
	}
}
