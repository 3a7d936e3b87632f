package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDelay groups the bursts of events editors produce for one save.
const watchDelay = 100 * time.Millisecond

// Watch processes the database at path, then again every time it or one
// of its included files is written, until ctx is done. Every pass starts
// from a fresh engine and its outcome is passed to onResult.
func Watch(
	ctx context.Context,
	logger *zap.Logger,
	path string,
	config Config,
	onResult func(*Result, error),
) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]bool)
	run := func() error {
		result, processErr := ProcessDatabase(ctx, logger, path, config, nil)
		defer onResult(result, processErr)

		files := result.Files
		if len(files) == 0 {
			files = []string{path}
		}
		for _, file := range files {
			abs, err := filepath.Abs(file)
			if err != nil {
				return err
			}
			if tracked[abs] {
				continue
			}
			tracked[abs] = true
			// Directories are watched so that files replaced on save keep
			// being seen.
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				return fmt.Errorf("error adding directory to watcher: %w", err)
			}
		}
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	timer := time.NewTimer(watchDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !tracked[abs] {
				continue
			}
			logger.Debug("Database changed", zap.String("file", abs))
			timer.Reset(watchDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			if err := run(); err != nil {
				return err
			}
		}
	}
}
