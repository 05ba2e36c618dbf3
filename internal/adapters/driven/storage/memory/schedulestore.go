package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// Ensure ScheduleStore implements the interface.
var _ driven.ScheduleStore = (*ScheduleStore)(nil)

// ScheduleStore is an in-memory implementation of driven.ScheduleStore.
type ScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]domain.ScanSchedule
	ticks     map[string][]domain.Tick // newest last
}

// NewScheduleStore creates a new in-memory schedule store.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{
		schedules: make(map[string]domain.ScanSchedule),
		ticks:     make(map[string][]domain.Tick),
	}
}

// GetSchedule returns a copy of the schedule, or nil if it does not exist.
func (s *ScheduleStore) GetSchedule(_ context.Context, id string) (*domain.ScanSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, nil
	}
	return &schedule, nil
}

// SaveSchedule creates or replaces a schedule.
func (s *ScheduleStore) SaveSchedule(_ context.Context, schedule *domain.ScanSchedule) error {
	if schedule == nil || schedule.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[schedule.ID] = *schedule
	return nil
}

// RecordTick appends a tick to its schedule's history.
func (s *ScheduleStore) RecordTick(_ context.Context, tick *domain.Tick) error {
	if tick == nil || tick.ScheduleID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[tick.ScheduleID] = append(s.ticks[tick.ScheduleID], *tick)
	return nil
}

// Ticks returns up to limit ticks, newest first.
func (s *ScheduleStore) Ticks(_ context.Context, scheduleID string, limit int) ([]domain.Tick, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.ticks[scheduleID]
	out := make([]domain.Tick, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// PruneTicks keeps the newest keep ticks of every schedule.
func (s *ScheduleStore) PruneTicks(_ context.Context, keep int) error {
	keep = max(keep, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ticks := range s.ticks {
		if len(ticks) > keep {
			s.ticks[id] = append([]domain.Tick(nil), ticks[len(ticks)-keep:]...)
		}
	}
	return nil
}
