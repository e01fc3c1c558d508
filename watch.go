package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const rebuildOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename

// watch calls rebuild once, then again after every change to path, until
// ctx is done. Rebuilds never overlap; changes arriving during a rebuild
// are coalesced into a single one.
func watch(ctx context.Context, path string, rebuild func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer func() { _ = w.Close() }() // Best effort.

	// Editors often save by renaming a new file over the old one, which
	// drops a watch on the file itself.
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(target), err)
	}

	changed := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&rebuildOps == 0 {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Watch error: %s.", err)
			}
		}
	}()

	rebuild()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			log.Printf("%s changed, recompiling.", path)
			rebuild()
		}
	}
}
