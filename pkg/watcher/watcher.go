// Package watcher notifies when a single file changes on disk.
//
// The parent directory is watched rather than the file itself so that editors
// and sync tools that replace the file (write to a temp file, then rename)
// are still seen. Bursts of events are coalesced: one notification is sent
// once the file has been quiet for the debounce duration.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported
const DefaultDebounce = 200 * time.Millisecond

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watch errors
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher reports changes to one file on its Changed channel.
type Watcher struct {
	path     string
	dir      string
	name     string
	debounce time.Duration
	logger   *slog.Logger

	fsw     *fsnotify.Watcher
	changed chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		name:     filepath.Base(abs),
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		changed:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Changed delivers one value per coalesced burst of changes. Notifications
// are dropped, not queued, while a previous one is unread.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Start begins watching. It is idempotent until Stop; a stopped watcher
// cannot be restarted.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher stopped")
	}
	if w.started {
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop ends watching and releases resources. It is idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	w.cancel()
	_ = w.fsw.Close()
	if started {
		<-w.done
	}
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "path", w.path, "err", err)
		}
	}
}
