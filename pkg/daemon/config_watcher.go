package daemon

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/util/pathutil"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is used when NewConfigWatcher gets a non-positive delay.
const DefaultDebounce = 100 * time.Millisecond

// ConfigWatcher calls onReload once a config file has stopped changing for
// the debounce delay.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	targets  map[string]bool
	debounce time.Duration
	logger   *logrus.Entry
	onReload func(file string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewConfigWatcher watches path. fsnotify does not follow symlinks and
// editors often replace files instead of writing them, so the watcher
// listens on the containing directory (and on the symlink target's
// directory) and filters events by name.
func NewConfigWatcher(path string, debounce time.Duration, onReload func(string)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger("config-watcher")

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	targets := map[string]bool{abs: true}
	if key, err := pathutil.NormalizeForLookup(abs); err == nil {
		targets[key] = true
	}
	dirs := map[string]bool{filepath.Dir(abs): true}
	if target, err := filepath.EvalSymlinks(abs); err == nil && target != abs {
		targets[target] = true
		dirs[filepath.Dir(target)] = true
		logger.Debugf("Watching symlink target: %s", target)
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ConfigWatcher{
		watcher:  watcher,
		path:     abs,
		targets:  targets,
		debounce: debounce,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Start processes events until ctx is cancelled or the watcher is closed.
func (w *ConfigWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if !w.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.handleChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.stopTimer()
			w.watcher.Close()
			return
		}
	}
}

// matches reports whether an event names the config file, directly or
// through a differently spelled path.
func (w *ConfigWatcher) matches(name string) bool {
	if w.targets[filepath.Clean(name)] {
		return true
	}
	key, err := pathutil.NormalizeForLookup(name)
	return err == nil && w.targets[key]
}

// handleChange (re)arms the debounce timer so a burst of writes produces
// a single reload after the last one.
func (w *ConfigWatcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *ConfigWatcher) fire() {
	w.logger.Infof("Config changed: %s", filepath.Base(w.path))
	if w.onReload != nil {
		w.onReload(w.path)
	}
}

func (w *ConfigWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
