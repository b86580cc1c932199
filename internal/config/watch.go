package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long Watch waits for writes to settle.
var WatchDebounce = 200 * time.Millisecond

// Watch calls onChange whenever the file at path is written, created, renamed
// or removed, until ctx is canceled. The parent directory is watched rather
// than the file because editors replace files by rename, which drops an inode
// watch. A missing parent directory is created so a config file written
// later is still picked up. Bursts of events within WatchDebounce produce a
// single call.
func Watch(ctx context.Context, path string, onChange func()) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			slog.Debug("config file changed", "path", path, "op", event.Op.String())
			if timer == nil {
				timer = time.AfterFunc(WatchDebounce, onChange)
			} else {
				timer.Reset(WatchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}
