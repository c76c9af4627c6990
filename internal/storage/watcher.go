package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// dirWatcher invalidates the listing cache when the storage tree
// changes. Bursts of events collapse into one callback per debounce
// window.
type dirWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	log      *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func newDirWatcher(dir string, debounce time.Duration, onChange func(), log *zap.Logger) (*dirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &dirWatcher{
		watcher:  watcher,
		debounce: debounce,
		onChange: onChange,
		log:      log,
	}
	go w.run()
	return w, nil
}

// Add watches an additional directory. Project directories created
// after startup are registered here.
func (w *dirWatcher) Add(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
	}
}

func (w *dirWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("storage watcher error", zap.Error(err))
		}
	}
}

func (w *dirWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *dirWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
