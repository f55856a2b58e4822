package loader

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch marks the directory dirty whenever a file in it is created,
// removed, renamed or written, until ctx is done.
func (d *Directory) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(d.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}
	d.logger.Debug("watching for new wallpapers", "dir", d.dir)

	const changed = fsnotify.Create | fsnotify.Remove | fsnotify.Rename | fsnotify.Write
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&changed != 0 && (IsImage(ev.Name) || ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0) {
				d.logger.Debug("wallpaper directory changed", "event", ev)
				d.MarkDirty()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watcher error", "err", err)
		}
	}
}
