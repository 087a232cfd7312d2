package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs a scan of root, then rescans whenever a matching source file
// changes, calling onScan with each result. Bursts of events within debounce
// are coalesced into one rescan. Watch returns when ctx is done.
//
// If ready is non-nil, a value is sent after the initial scan once the
// watcher is fully set up, allowing callers to synchronize without sleeping.
func Watch(ctx context.Context, root string, opts Options, debounce time.Duration, ready chan<- struct{}, onScan func(*Result, error)) error {
	o, err := opts.withDefaults()
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, root, o); err != nil {
		return err
	}

	onScan(Run(ctx, root, opts))

	if ready != nil {
		ready <- struct{}{}
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name, o); err != nil {
						o.Logger.Warn("cannot watch directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if !relevant(event, o) {
				continue
			}
			o.Logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			onScan(Run(ctx, root, opts))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.Logger.Warn("watch error", "err", err)
		}
	}
}

func relevant(event fsnotify.Event, o Options) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return slices.Contains(o.Extensions, strings.ToLower(filepath.Ext(event.Name)))
}

// addTree watches dir and every subdirectory the scan would visit.
func addTree(w *fsnotify.Watcher, dir string, o Options) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != dir && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
