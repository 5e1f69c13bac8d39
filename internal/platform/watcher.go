package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tnoatlas/atlas/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before a change fires
const DefaultDebounce = 300 * time.Millisecond

// WatchFile calls onChange after path is written, created or replaced and
// then left alone for debounce. The parent directory is watched so that
// editors which save by renaming are still seen. It returns once the watch
// is registered; watching stops when ctx is done.
func WatchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					pending = time.After(debounce)
				}

			case <-pending:
				pending = nil
				logger.Info("Watched file changed", logger.String("path", abs))
				onChange()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error", logger.String("path", abs), logger.ErrorField(err))
			}
		}
	}()

	return nil
}
