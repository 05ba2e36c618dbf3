package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// Ensure ResyncListener implements the interface.
var _ driving.ChangeListener = (*ResyncListener)(nil)

// ResyncListener turns change notifications into targeted resyncs.
// It shares no state with the Scheduler.
//
// Identical notifications are coalesced, never dropped: a notification
// arriving while its resync is running marks it dirty, and the running
// resync makes one more pass once the current one ends. Every caller is
// answered by a pass that started after its notification arrived.
type ResyncListener struct {
	syncOrch driving.SyncOrchestrator

	mu      sync.Mutex
	flights map[string]*resyncFlight
}

// resyncFlight is the in-progress resync for one notification key.
type resyncFlight struct {
	done    chan struct{}
	dirty   bool
	waiters int

	report *domain.ScanReport
	err    error
}

// NewResyncListener creates a listener that resyncs through syncOrch.
func NewResyncListener(syncOrch driving.SyncOrchestrator) *ResyncListener {
	return &ResyncListener{
		syncOrch: syncOrch,
		flights:  make(map[string]*resyncFlight),
	}
}

// OnConfigurationChange resynchronises the topology named in properties.
// The resync itself is detached from ctx: a caller that gives up stops
// waiting, but callers sharing the pass still get its result.
func (l *ResyncListener) OnConfigurationChange(
	ctx context.Context,
	properties map[string]string,
) (*domain.ScanReport, error) {
	req, err := domain.NewResyncRequest(properties)
	if err != nil {
		return nil, err
	}

	logger.With(logger.Fields{"topology": req.Topology}).Info("received change notification")

	key := flightKey(req)
	l.mu.Lock()
	f, running := l.flights[key]
	if running {
		f.dirty = true
		f.waiters++
		logger.Debug("Resync of %s already running, another pass will follow", req.Topology)
	} else {
		f = &resyncFlight{done: make(chan struct{})}
		l.flights[key] = f
		go l.run(context.WithoutCancel(ctx), key, req, f)
	}
	l.mu.Unlock()

	select {
	case <-f.done:
		return f.report, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run repeats the resync until no notification arrived during a pass.
func (l *ResyncListener) run(ctx context.Context, key string, req domain.ResyncRequest, f *resyncFlight) {
	for {
		report, err := l.syncOrch.Resync(ctx, req)

		l.mu.Lock()
		if f.dirty {
			f.dirty = false
			l.mu.Unlock()
			continue
		}
		delete(l.flights, key)
		f.report, f.err = report, err
		l.mu.Unlock()

		close(f.done)
		return
	}
}

// flightKey identifies notifications that would produce the same resync.
func flightKey(req domain.ResyncRequest) string {
	pairs := make([]string, 0, len(req.Properties))
	for k, v := range req.Properties {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return req.Topology + "\x00" + strings.Join(pairs, "\x00")
}
