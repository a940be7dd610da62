package soundfont

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is how long a file must stay quiet before a reload.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reports changes to a single soundfont file. The parent directory
// is watched so that editors replacing the file by rename are seen too.
type Watcher struct {
	path    string
	dt      time.Duration
	watcher *fsnotify.Watcher
	delay   delay
}

// NewWatcher starts watching path. Changes are reported once the file has
// been quiet for dt; a non-positive dt selects DefaultReloadDelay.
func NewWatcher(path string, dt time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	if dt <= 0 {
		dt = DefaultReloadDelay
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, dt: dt, watcher: fw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls reload after each burst of changes until ctx is done or the
// watcher fails. reload runs on the caller's goroutine. Run closes the
// watcher when it returns.
func (w *Watcher) Run(ctx context.Context, reload func(path string)) error {
	defer w.watcher.Close()
	defer w.delay.stop()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if filepath.Clean(ev.Name) == w.path && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				w.delay.trigger(w.dt)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher channel closed")
			}
			return err
		case <-w.delay.channel:
			w.delay.channel = nil
			if rem := w.delay.remainingTime(); rem > 0 {
				w.delay.trigger(rem)
			} else {
				reload(w.path)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
