// Package watcher processes descriptor files as soon as the filesystem
// reports them created or modified, independent of the periodic scan.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// Options tunes event handling.
type Options struct {
	// Extension selects descriptor files.
	Extension string

	// EventsPerSecond caps how many files are processed per second.
	EventsPerSecond int

	// Debounce is how long a file must stay quiet before it is processed.
	Debounce time.Duration
}

// Watcher feeds filesystem events for one directory to the orchestrator.
type Watcher struct {
	dir      string
	opts     Options
	syncOrch driving.SyncOrchestrator
	limiter  *rate.Limiter

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
}

// New creates a watcher for dir.
func New(syncOrch driving.SyncOrchestrator, dir string, opts Options) *Watcher {
	if opts.Extension == "" {
		opts.Extension = domain.DefaultDescriptorExtension
	}
	if opts.EventsPerSecond <= 0 {
		opts.EventsPerSecond = 5
	}

	return &Watcher{
		dir:      dir,
		opts:     opts,
		syncOrch: syncOrch,
		limiter:  rate.NewLimiter(rate.Limit(opts.EventsPerSecond), 1),
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 64),
	}
}

// Run watches until ctx is cancelled. It returns an error only if the
// directory cannot be watched or the event stream fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for %s files", w.dir, w.opts.Extension)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer w.stopTimers()
		return w.watch(ctx, fw)
	})
	g.Go(func() error {
		w.process(ctx)
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher event stream closed")
			}
			w.handle(ctx, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher error stream closed")
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// handle schedules a file for processing once events for it stop arriving.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !domain.MatchesExtension(filepath.Base(event.Name), w.opts.Extension) {
		return
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.ready:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			report := w.syncOrch.ProcessFile(ctx, path, domain.ParseOptions{})
			log := logger.With(logger.Fields{"path": path, "trigger": domain.TriggerWatch.String()})
			if report.Succeeded() {
				log.Debug("processed changed descriptor file")
			} else {
				log.Warn("changed descriptor file processed with failures")
			}
		}
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
