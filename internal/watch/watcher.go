// Package watch re-runs the manifest pipeline whenever the bundler rewrites
// its stats file.
//
// The parent directory is watched rather than the file itself, so the watch
// survives bundlers that replace the file through a rename. Events within the
// debounce window coalesce into one cycle and cycles never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not positive
const DefaultDebounce = 300 * time.Millisecond

// Config holds the parameters for a Watcher
type Config struct {
	// Path is the stats file to watch
	Path string
	// Debounce is the quiet period after the last event before a cycle runs
	Debounce time.Duration
	// RunOnStart runs one cycle before waiting for events
	RunOnStart bool
	// OnChange runs one cycle. Errors are logged and watching continues.
	OnChange func(ctx context.Context, path string) error
	Logger   *utils.Logger
}

// Watcher monitors one file and runs a debounced, serialized callback when
// it changes. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *utils.Logger
	started  atomic.Bool
	cycles   atomic.Int64
}

// New creates a Watcher and registers the directory of cfg.Path
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watch: path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add directory %q: %w", filepath.Dir(path), err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Watcher{
		cfg:      cfg,
		path:     path,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.WithComponent("watch").WithFile(path),
	}, nil
}

// Path returns the absolute path of the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Cycles returns the number of completed cycles
func (w *Watcher) Cycles() int64 {
	return w.cycles.Load()
}

// Run blocks until ctx is cancelled, processing events and running cycles.
// It returns nil on cancellation and an error if the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer w.fsw.Close()

	// capacity one: a trigger arriving during a cycle queues exactly one more
	trigger := make(chan struct{}, 1)
	notify := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	// the cycle worker stops on any return from Run, not only on ctx
	cycleCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-cycleCtx.Done():
				return
			case <-trigger:
				w.runCycle(cycleCtx)
			}
		}
	}()
	defer wg.Wait()
	defer stop()

	if w.cfg.RunOnStart {
		notify()
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info().Dur("debounce", w.debounce).Msg("Watching stats file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug().Str("op", evt.Op.String()).Msg("Stats file changed")
			if timer == nil {
				timer = time.AfterFunc(w.debounce, notify)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// events were lost, so the file may have changed
				notify()
			}
			w.logger.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

// relevant reports whether evt may have changed the content of the watched file
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.path {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)
}

func (w *Watcher) runCycle(ctx context.Context) {
	if ctx.Err() != nil || w.cfg.OnChange == nil {
		return
	}

	start := time.Now()
	err := w.cfg.OnChange(ctx, w.path)
	n := w.cycles.Add(1)

	if err != nil {
		w.logger.Error().Err(err).Int64("cycle", n).Msg("Cycle failed")
		return
	}
	w.logger.Debug().Int64("cycle", n).Dur("duration", time.Since(start)).Msg("Cycle completed")
}
