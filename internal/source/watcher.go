package source

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when operating on a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// DefaultDelay is the quiet period before a change is reported.
const DefaultDelay = 150 * time.Millisecond

// Change carries the freshly decoded contents of the watched file.
type Change struct {
	Path string
	Text string
}

// Watcher reports the contents of a single file each time it settles
// after being written. The parent directory is watched so editors that
// save by rename are seen.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	encoding string
	delay    time.Duration

	changes chan Change
	errors  chan error

	timer *time.Timer
	last  string

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithEncoding sets the encoding used to decode the file.
func WithEncoding(name string) WatcherOption {
	return func(w *Watcher) {
		w.encoding = name
	}
}

// WithInitial records the text already loaded so an unchanged rewrite is
// not reported.
func WithInitial(text string) WatcherOption {
	return func(w *Watcher) {
		w.last = text
	}
}

// Watch starts watching path.
func Watch(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		delay:   DefaultDelay,
		changes: make(chan Change, 8),
		errors:  make(chan error, 8),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes returns the change channel. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()

	w.mu.Lock()
	close(w.changes)
	close(w.errors)
	w.mu.Unlock()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	text, err := ReadFile(w.path, w.encoding)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if err != nil {
		w.sendErrorLocked(err)
		return
	}
	if text == w.last {
		return
	}
	w.last = text

	select {
	case w.changes <- Change{Path: w.path, Text: text}:
	default:
		// Receiver is behind; drop the oldest pending change.
		select {
		case <-w.changes:
		default:
		}
		w.changes <- Change{Path: w.path, Text: text}
	}
}

func (w *Watcher) sendError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.sendErrorLocked(err)
	}
}

func (w *Watcher) sendErrorLocked(err error) {
	select {
	case w.errors <- err:
	default:
	}
}
