package ui

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/voltable/pkg/loader"
	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/watcher"
)

// WorkerState represents the current state of the background worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is reloading the dataset.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string    // "load"
	Cause   error     // The underlying error
	Time    time.Time // When the error occurred
	Retries int       // Consecutive failures including this one
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// Sender delivers messages to the running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// BackgroundWorker reloads the CSV off the UI goroutine when the file changes.
// Unchanged content is not re-sent.
type BackgroundWorker struct {
	source        string
	debounceDelay time.Duration
	logger        *slog.Logger

	mu         sync.RWMutex
	state      WorkerState
	dirty      bool // a change arrived while processing
	dataset    *model.Dataset
	started    bool
	lastHash   string
	lastError  *WorkerError
	errorCount int

	watcher *watcher.Watcher
	program Sender

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// WorkerConfig configures the BackgroundWorker.
type WorkerConfig struct {
	Source        string // local CSV path; URLs are reloaded only on TriggerRefresh
	DebounceDelay time.Duration
	Program       Sender
	Logger        *slog.Logger
}

// NewBackgroundWorker creates a new background worker.
func NewBackgroundWorker(cfg WorkerConfig) (*BackgroundWorker, error) {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = watcher.DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &BackgroundWorker{
		source:        cfg.Source,
		debounceDelay: cfg.DebounceDelay,
		logger:        cfg.Logger,
		program:       cfg.Program,
		state:         WorkerIdle,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if cfg.Source != "" && !loader.IsURL(cfg.Source) {
		fw, err := watcher.NewWatcher(cfg.Source,
			watcher.WithDebounceDuration(cfg.DebounceDelay),
			watcher.WithLogger(cfg.Logger),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}

	return w, nil
}

// SetProgram sets the receiver of reload messages. Call before Start.
func (w *BackgroundWorker) SetProgram(p Sender) {
	w.mu.Lock()
	w.program = p
	w.mu.Unlock()
}

// Start begins watching for file changes. It is idempotent.
func (w *BackgroundWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher != nil {
		if err := w.watcher.Start(); err != nil {
			return err
		}
		go w.processLoop()
	} else {
		close(w.done)
	}
	return nil
}

// Stop halts the worker. It is idempotent.
func (w *BackgroundWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()

	if w.watcher != nil {
		w.watcher.Stop()
	}

	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
		}
	}
}

// TriggerRefresh reloads the source now.
// Has no effect if the worker is stopped; coalesces if already processing.
func (w *BackgroundWorker) TriggerRefresh() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	if w.state == WorkerProcessing {
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	go w.process()
}

// Dataset returns the last dataset loaded by the worker (may be nil).
func (w *BackgroundWorker) Dataset() *model.Dataset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dataset
}

// State returns the current worker state.
func (w *BackgroundWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *BackgroundWorker) processLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.watcher.Changed():
			w.process()
		}
	}
}

func (w *BackgroundWorker) process() {
	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerProcessing {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerProcessing
	w.dirty = false
	w.mu.Unlock()

	ds := w.reload()

	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	if ds != nil {
		w.dataset = ds
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	program := w.program
	w.mu.Unlock()

	if program != nil && ds != nil {
		program.Send(DatasetReadyMsg{Dataset: ds})
	}

	if wasDirty {
		go w.process()
	}
}

// safeCompute executes fn and recovers from any panics.
func (w *BackgroundWorker) safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{
				Phase: phase,
				Cause: err,
				Time:  time.Now(),
			}
		}
	}()
	return result
}

func (w *BackgroundWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	w.lastError = err
	if err != nil {
		w.errorCount++
		err.Retries = w.errorCount
	} else {
		w.errorCount = 0
	}
	w.mu.Unlock()
}

// LastError returns the most recent error (nil if the last reload succeeded).
func (w *BackgroundWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

// reload loads the source. It returns nil on error or when the content is
// unchanged since the last successful reload.
func (w *BackgroundWorker) reload() *model.Dataset {
	if w.source == "" {
		return nil
	}
	start := time.Now()

	var ds *model.Dataset
	loadErr := w.safeCompute("load", func() error {
		var err error
		ds, err = loader.Load(w.ctx, w.source)
		return err
	})
	if loadErr != nil {
		w.recordError(loadErr)
		w.logger.Warn("dataset reload failed", "source", w.source, "err", loadErr)

		w.mu.RLock()
		program := w.program
		w.mu.RUnlock()
		if program != nil {
			program.Send(DatasetErrorMsg{Err: loadErr, Recoverable: true})
		}
		return nil
	}

	hash := DatasetHash(ds)

	w.mu.RLock()
	lastHash := w.lastHash
	w.mu.RUnlock()

	if hash == lastHash && lastHash != "" {
		w.logger.Debug("dataset unchanged, skipping reload", "hash", hashPrefix(hash))
		w.recordError(nil)
		return nil
	}

	w.recordError(nil)
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()

	w.logger.Info("dataset reloaded",
		"source", w.source,
		"records", ds.Len(),
		"took", time.Since(start),
		"hash", hashPrefix(hash))
	return ds
}

// DatasetHash returns a content hash of the dataset's columns and values.
func DatasetHash(ds *model.Dataset) string {
	h := sha256.New()
	for _, c := range ds.Columns() {
		fmt.Fprintf(h, "%q,", c)
	}
	h.Write([]byte{'\n'})
	for _, r := range ds.Records() {
		fields := r.Fields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%q=%q,", k, fields[k])
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DatasetReadyMsg is sent to the UI when a reloaded dataset is ready.
type DatasetReadyMsg struct {
	Dataset *model.Dataset
}

// DatasetErrorMsg is sent to the UI when a reload fails. The UI keeps
// showing the previous dataset.
type DatasetErrorMsg struct {
	Err         error
	Recoverable bool // True if we expect to recover on next file change
}

// LastHash returns the content hash from the last successful reload.
func (w *BackgroundWorker) LastHash() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHash
}

// ResetHash clears the stored content hash so the next reload is always sent.
func (w *BackgroundWorker) ResetHash() {
	w.mu.Lock()
	w.lastHash = ""
	w.mu.Unlock()
}

func hashPrefix(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}

// ReloadCmd loads source once and reports the result as a message
func ReloadCmd(source string) tea.Cmd {
	return func() tea.Msg {
		ds, err := loader.Load(context.Background(), source)
		if err != nil {
			return DatasetErrorMsg{Err: err, Recoverable: true}
		}
		return DatasetReadyMsg{Dataset: ds}
	}
}
