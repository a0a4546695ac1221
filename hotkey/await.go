package hotkey

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Await calls find until it succeeds, retrying whenever something is
// created or changes permissions in dir. It gives up when ctx ends and
// returns the last error from find.
func Await(ctx context.Context, dir string, find func() (string, error)) (string, error) {
	path, err := find()
	if err == nil {
		return path, nil
	}

	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		return "", fmt.Errorf("create watcher: %w", werr)
	}
	defer watcher.Close()

	if werr := watcher.Add(dir); werr != nil {
		return "", fmt.Errorf("watch %s: %w", dir, werr)
	}
	logger.Printf("waiting for input device in %s", dir)

	// The device may have appeared before the watch was in place.
	if path, err = find(); err == nil {
		return path, nil
	}

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w (gave up waiting: %v)", err, ctx.Err())
		case event, ok := <-watcher.Events:
			if !ok {
				return "", err
			}
			if event.Op&(fsnotify.Create|fsnotify.Chmod) == 0 {
				continue
			}
			if path, err = find(); err == nil {
				logger.Printf("device appeared: %s", path)
				return path, nil
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return "", err
			}
			logger.Printf("watcher error: %v", werr)
		}
	}
}
