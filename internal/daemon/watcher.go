package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// ConfigWatcher fires onChange when any watched config file is written,
// created, renamed or removed. Parent directories are watched so editors
// that replace files atomically are still seen.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewConfigWatcher watches files, typically the main config and everything
// it includes.
func NewConfigWatcher(files []string, onChange func(), logger *slog.Logger) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	cw := &ConfigWatcher{
		watcher:  w,
		onChange: onChange,
		logger:   logger,
		debounce: defaultWatchDebounce,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
	}
	if err := cw.SetFiles(files); err != nil {
		w.Close()
		return nil, err
	}
	return cw, nil
}

// SetFiles replaces the watched file set, e.g. after a reload changed the
// include list. Directories are only ever added.
func (c *ConfigWatcher) SetFiles(files []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[string]struct{}, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", f, err)
		}
		next[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := c.dirs[dir]; ok {
			continue
		}
		if err := c.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		c.dirs[dir] = struct{}{}
	}
	c.files = next
	return nil
}

func (c *ConfigWatcher) watches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.files[abs]
	return ok
}

// Run delivers debounced change notifications until ctx is cancelled.
func (c *ConfigWatcher) Run(ctx context.Context) {
	defer c.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&relevant == 0 || !c.watches(ev.Name) {
				continue
			}
			c.logger.Debug("config file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			fire = timer.C
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("config watcher error", "error", err)
		case <-fire:
			fire = nil
			c.onChange()
		}
	}
}
