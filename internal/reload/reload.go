// Package reload implements the hot-reload helper internal/wordlist
// and internal/nsfile share: watch a file for writes via fsnotify and
// swap the parsed content behind a mutex.
package reload

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/semihalev/zlog/v2"
)

// Parser parses the file at path into a value of type T. A Watcher calls
// this once at construction and again on every relevant write event.
type Parser[T any] func(path string) (T, error)

// Watcher holds the last-successfully-parsed content of one file,
// optionally kept fresh by an fsnotify watch on its containing
// directory. Constructing without watching (period == 0 and no fsnotify
// support needed) still works: every workflow also works with reload
// disabled.
type Watcher[T any] struct {
	path   string
	parse  Parser[T]
	period time.Duration

	mu      sync.RWMutex
	current T

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New loads path once via parse and returns a Watcher serving that
// content. watch selects whether an fsnotify watch + periodic re-check
// (period, 0 disables the ticker) is started; failing to start the
// watcher is non-fatal (falls back to serving the initial parse
// forever) and is logged at Warn.
func New[T any](path string, parse Parser[T], watch bool, period time.Duration) (*Watcher[T], error) {
	w := &Watcher[T]{path: path, parse: parse, period: period}

	initial, err := parse(path)
	if err != nil {
		return nil, err
	}
	w.current = initial

	if !watch {
		return w, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		zlog.Warn("reload watcher disabled, fsnotify unavailable", "path", path, "error", err.Error())
		return w, nil
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		zlog.Warn("reload watcher disabled, cannot watch directory", "path", path, "error", err.Error())
		return w, nil
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.run()

	return w, nil
}

// Current returns the most recently successfully parsed content.
func (w *Watcher[T]) Current() T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop stops the background watch goroutine, if one was started. Safe to
// call on a Watcher built with watch == false (no-op).
func (w *Watcher[T]) Stop() {
	if w.watcher == nil {
		return
	}
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher[T]) run() {
	defer close(w.doneCh)
	defer w.watcher.Close()

	var ticker *time.Ticker
	var tickerC <-chan time.Time
	if w.period > 0 {
		ticker = time.NewTicker(w.period)
		defer ticker.Stop()
		tickerC = ticker.C
	}

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.isRelevant(event) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zlog.Error("reload watcher error", "path", w.path, "error", err.Error())
		case <-tickerC:
			w.reload()
		}
	}
}

func (w *Watcher[T]) isRelevant(event fsnotify.Event) bool {
	return filepath.Base(event.Name) == filepath.Base(w.path) || event.Name == w.path
}

// reload re-parses the file; a parse failure keeps serving the
// last-good content and logs a Warn.
func (w *Watcher[T]) reload() {
	parsed, err := w.parse(w.path)
	if err != nil {
		zlog.Warn("reload failed, keeping last-good content", "path", w.path, "error", err.Error())
		return
	}

	w.mu.Lock()
	w.current = parsed
	w.mu.Unlock()

	zlog.Info("reloaded file", "path", w.path)
}
