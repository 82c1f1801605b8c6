package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-scans when files appear under the videos directory. Create
// events are debounced so a course folder being copied in triggers one
// scan, not one per file. Blocks until the context is cancelled.
func (i *Importer) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(i.root); err != nil {
		return fmt.Errorf("watch %s: %w", i.root, err)
	}
	// fsnotify is not recursive: watch existing subdirectories too.
	_ = filepath.WalkDir(i.root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = watcher.Add(path)
		}
		return nil
	})

	i.logger.Info().Str("root", i.root).Dur("debounce", debounce).Msg("watching for new videos")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories must be watched as well so files
				// landing inside them keep resetting the timer.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
				if !pending {
					pending = true
				} else if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Error().Err(err).Msg("watcher error")

		case <-timer.C:
			pending = false
			if _, err := i.Scan(ctx); err != nil {
				i.logger.Error().Err(err).Msg("triggered scan failed")
			}
		}
	}
}
