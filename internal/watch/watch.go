// Package watch reports debounced changes to a single file.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FileWatcher calls a function after the watched file has been written,
// replaced or removed. Bursts of events within the debounce delay produce a
// single call.
type FileWatcher struct {
	file     string
	onChange func()
	watcher  *fsnotify.Watcher
	logger   logrus.FieldLogger

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration
	// callbacks counts onChange calls in flight; Add happens under refreshMu.
	callbacks sync.WaitGroup

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New starts watching path. The parent directory is watched as well so that
// tools which save through a rename are noticed.
func New(path string, debounce time.Duration, onChange func(), logger logrus.FieldLogger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	w := &FileWatcher{
		file:         filepath.Clean(abs),
		onChange:     onChange,
		watcher:      watcher,
		logger:       logger,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	if err := watcher.Add(filepath.Dir(w.file)); err != nil {
		watcher.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Close stops the watcher and waits for the event loop and any running
// onChange call to return.
func (w *FileWatcher) Close() error {
	w.closeOnce.Do(func() {
		w.refreshMu.Lock()
		close(w.done)
		if w.refreshTimer != nil {
			w.refreshTimer.Stop()
			w.refreshTimer = nil
		}
		w.refreshMu.Unlock()

		w.closeErr = w.watcher.Close()
		w.wg.Wait()
		w.callbacks.Wait()
	})
	return w.closeErr
}

func (w *FileWatcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.file {
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.logger.WithField("event", event.Op.String()).Debug("file changed")
		w.scheduleRefresh()
	}
}

func (w *FileWatcher) scheduleRefresh() {
	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if w.refreshTimer != nil {
		w.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.refreshDelay, func() {
		w.refreshMu.Lock()
		select {
		case <-w.done:
			w.refreshMu.Unlock()
			return
		default:
		}
		if w.refreshTimer == timer {
			w.refreshTimer = nil
		}
		w.callbacks.Add(1)
		w.refreshMu.Unlock()

		defer w.callbacks.Done()
		w.onChange()
	})

	w.refreshTimer = timer
}
