package driven

import (
	"context"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// ScheduleStore persists periodic scan state and tick history so they
// survive restarts.
type ScheduleStore interface {
	// GetSchedule returns nil and no error if the schedule does not exist.
	GetSchedule(ctx context.Context, id string) (*domain.ScanSchedule, error)

	// SaveSchedule creates or replaces a schedule.
	SaveSchedule(ctx context.Context, schedule *domain.ScanSchedule) error

	// RecordTick appends a tick to its schedule's history.
	RecordTick(ctx context.Context, tick *domain.Tick) error

	// Ticks returns up to limit ticks for a schedule, newest first.
	Ticks(ctx context.Context, scheduleID string, limit int) ([]domain.Tick, error)

	// PruneTicks keeps the newest keep ticks of every schedule.
	PruneTicks(ctx context.Context, keep int) error
}
