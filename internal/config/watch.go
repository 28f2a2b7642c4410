package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"signalscope/internal/common/fsutil"
)

// WatchDebounce coalesces bursts of writes from editors into one reload.
var WatchDebounce = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes the new configuration to
// fn. Parse failures go to onErr (when non-nil) and keep the previous
// configuration in effect. Watch returns once the watcher is established and
// stops when ctx is done.
func Watch(ctx context.Context, path string, fn func(Config), onErr func(error)) error {
	dir, name, err := fsutil.SplitWatch(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	full := filepath.Join(dir, name)
	report := func(err error) {
		if onErr != nil {
			onErr(err)
		}
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != full {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(WatchDebounce)
				} else {
					timer.Reset(WatchDebounce)
				}
				fire = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				report(err)
			case <-fire:
				fire = nil
				cfg, err := Load(full)
				if err != nil {
					report(err)
					continue
				}
				fn(cfg)
			}
		}
	}()
	return nil
}
