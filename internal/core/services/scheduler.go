package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs scan-all on a fixed interval in a single background
// goroutine. Ticks never overlap: a slow scan delays the next one.
type Scheduler struct {
	store    driven.ScheduleStore
	syncOrch driving.SyncOrchestrator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	now func() time.Time
}

// NewScheduler creates a scheduler. The store is optional - if nil,
// ticks are not recorded.
func NewScheduler(store driven.ScheduleStore, syncOrch driving.SyncOrchestrator) *Scheduler {
	return &Scheduler{
		store:    store,
		syncOrch: syncOrch,
		now:      time.Now,
	}
}

// Setup starts monitoring. The first scan runs immediately.
func (s *Scheduler) Setup(ctx context.Context, interval time.Duration) bool {
	if interval <= 0 {
		logger.Info("Monitoring of descriptor files is disabled")
		return false
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return true // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	schedule := s.loadSchedule(ctx, interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, schedule, stopCh)

		// A cancelled ctx ends the loop without Stop; a later Setup
		// must be able to start it again.
		s.mu.Lock()
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
	}()

	status, err := s.syncOrch.Status(ctx)
	if err == nil {
		logger.Info("Monitoring descriptor files in %s every %s", status.SourceDir, interval)
	} else {
		logger.Info("Monitoring descriptor files every %s", interval)
	}
	return true
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for the running tick to complete
	s.wg.Wait()

	return nil
}

// Running returns true while the background goroutine is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// History returns recorded ticks, newest first.
func (s *Scheduler) History(ctx context.Context, limit int) ([]domain.Tick, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Ticks(ctx, domain.ScheduleDescriptorScan, limit)
}

func (s *Scheduler) run(ctx context.Context, schedule *domain.ScanSchedule, stopCh <-chan struct{}) {
	// Scan immediately on startup
	s.tick(ctx, schedule)

	ticker := time.NewTicker(schedule.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.tick(ctx, schedule)
		}
	}
}

// tick performs one scan and records its outcome. Nothing escapes a tick.
func (s *Scheduler) tick(ctx context.Context, schedule *domain.ScanSchedule) {
	started := s.now()
	report, err := s.syncOrch.ScanAll(ctx, domain.TriggerScheduled)
	if err != nil {
		logger.Error("Scheduled scan failed: %v", err)
	}

	t := domain.NewTick(schedule.ID, started, s.now(), report, err)
	schedule.Record(t)
	if schedule.ConsecutiveFailures > 1 {
		logger.With(logger.Fields{
			"failures": schedule.ConsecutiveFailures,
			"error":    schedule.LastError,
		}).Warn("scheduled scans keep failing")
	}

	s.record(ctx, schedule, &t)
}

// loadSchedule restores the persisted schedule, or starts a new one.
// Failure counts carry over a restart.
func (s *Scheduler) loadSchedule(ctx context.Context, interval time.Duration) *domain.ScanSchedule {
	schedule := &domain.ScanSchedule{ID: domain.ScheduleDescriptorScan}
	if s.store != nil {
		stored, err := s.store.GetSchedule(ctx, domain.ScheduleDescriptorScan)
		switch {
		case err != nil:
			logger.Warn("scheduler: failed to load schedule: %v", err)
		case stored != nil:
			schedule = stored
		}
	}

	schedule.Interval = interval
	schedule.Enabled = true
	schedule.NextTick = s.now()

	if s.store != nil {
		if err := s.store.SaveSchedule(ctx, schedule); err != nil {
			logger.Warn("scheduler: failed to save schedule: %v", err)
		}
	}
	return schedule
}

// record persists the schedule and the tick, then trims history.
func (s *Scheduler) record(ctx context.Context, schedule *domain.ScanSchedule, t *domain.Tick) {
	if s.store == nil {
		return
	}

	if err := s.store.SaveSchedule(ctx, schedule); err != nil {
		logger.Warn("scheduler: failed to save schedule %s: %v", schedule.ID, err)
	}

	if err := s.store.RecordTick(ctx, t); err != nil {
		logger.Warn("scheduler: failed to record tick for %s: %v", schedule.ID, err)
	}

	if err := s.store.PruneTicks(ctx, domain.TickRetention); err != nil {
		logger.Warn("scheduler: failed to prune ticks: %v", err)
	}
}
