// Package watch rewrites .sql files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/decteify/internal/config"
	"github.com/roach88/decteify/internal/decte"
)

// DefaultDebounce is how long the watcher waits for a burst of events on a
// file to settle before rewriting it.
const DefaultDebounce = 100 * time.Millisecond

// Event reports one rewritten file.
type Event struct {
	Input  string
	Output string
	Result *decte.Result

	// Err is set when the file could not be read or written, or when a
	// strict rewrite failed. Output is not written in that case.
	Err error
}

// Watcher monitors one directory and rewrites every .sql file created or
// written in it.
type Watcher struct {
	dir    string
	cfg    *config.Config
	logger *slog.Logger

	fsWatcher *fsnotify.Watcher

	// Debouncing: events collect in pending until the timer fires.
	debounce time.Duration
	pending  map[string]fsnotify.Op
	timer    *time.Timer
	fire     chan struct{}

	onRewrite func(Event)
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay. Default is DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger. Default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithOnRewrite sets a callback invoked after each file is processed.
func WithOnRewrite(fn func(Event)) Option {
	return func(w *Watcher) {
		w.onRewrite = fn
	}
}

// New creates a watcher for dir. Outputs go where cfg.OutputPath says.
func New(dir string, cfg *config.Config, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		dir:       dir,
		cfg:       cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		fsWatcher: fsw,
		debounce:  DefaultDebounce,
		pending:   make(map[string]fsnotify.Op),
		fire:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return w, nil
}

// Run processes events until ctx is cancelled. The watcher is closed when
// Run returns and cannot be reused.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	w.logger.Info("watching directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			if w.timer != nil {
				w.timer.Stop()
			}
			w.logger.Info("watcher stopped", "dir", w.dir)
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-w.fire:
			w.flush()
		}
	}
}

// handleEvent queues a .sql file for rewriting and restarts the debounce
// timer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".sql") {
		return
	}
	if w.cfg.IsOutput(event.Name) {
		return
	}

	// Last operation wins for the same file.
	w.pending[event.Name] = event.Op

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

// flush rewrites every pending file in name order.
func (w *Watcher) flush() {
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]fsnotify.Op)

	sort.Strings(paths)
	for _, path := range paths {
		event := RewriteFile(path, w.cfg, w.logger)
		if event.Err != nil {
			w.logger.Warn("rewrite failed", "input", path, "error", event.Err)
		} else {
			w.logger.Info("rewrote file",
				"input", event.Input,
				"output", event.Output,
				"ctes", len(event.Result.Definitions),
			)
		}
		if w.onRewrite != nil {
			w.onRewrite(event)
		}
	}
}

// RewriteFile rewrites input with cfg and writes the result to
// cfg.OutputPath(input), followed by a newline.
func RewriteFile(input string, cfg *config.Config, logger *slog.Logger) Event {
	event := Event{Input: input, Output: cfg.OutputPath(input)}

	data, err := os.ReadFile(input)
	if err != nil {
		event.Err = fmt.Errorf("failed to read input: %w", err)
		return event
	}

	res, err := decte.Rewrite(string(data), cfg.RewriteOptions(logger))
	event.Result = res
	if err != nil {
		event.Err = err
		return event
	}

	if err := os.MkdirAll(filepath.Dir(event.Output), 0755); err != nil {
		event.Err = fmt.Errorf("failed to create output directory: %w", err)
		return event
	}
	if err := os.WriteFile(event.Output, []byte(res.SQL+"\n"), 0644); err != nil {
		event.Err = fmt.Errorf("failed to write output: %w", err)
		return event
	}
	return event
}
