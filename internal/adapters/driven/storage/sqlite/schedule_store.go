package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scheduleStore implements driven.ScheduleStore.
type scheduleStore struct {
	store *Store
}

var _ driven.ScheduleStore = (*scheduleStore)(nil)

// GetSchedule returns nil and no error if the schedule does not exist.
func (s *scheduleStore) GetSchedule(ctx context.Context, id string) (*domain.ScanSchedule, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, interval_ms, enabled, last_tick, next_tick, last_success, last_error, consecutive_failures
		FROM scan_schedules WHERE id = ?
	`, id)

	var (
		schedule                            domain.ScanSchedule
		intervalMS                          int64
		enabled                             int
		lastTick, nextTick, lastOK, lastErr sql.NullString
	)
	err := row.Scan(&schedule.ID, &intervalMS, &enabled,
		&lastTick, &nextTick, &lastOK, &lastErr, &schedule.ConsecutiveFailures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning schedule %s: %w", id, err)
	}

	schedule.Interval = time.Duration(intervalMS) * time.Millisecond
	schedule.Enabled = enabled == 1
	schedule.LastTick = parseTime(lastTick)
	schedule.NextTick = parseTime(nextTick)
	schedule.LastSuccess = parseTime(lastOK)
	schedule.LastError = lastErr.String
	return &schedule, nil
}

// SaveSchedule creates or replaces a schedule.
func (s *scheduleStore) SaveSchedule(ctx context.Context, schedule *domain.ScanSchedule) error {
	if schedule == nil || schedule.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scan_schedules
			(id, interval_ms, enabled, last_tick, next_tick, last_success, last_error, consecutive_failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interval_ms = excluded.interval_ms,
			enabled = excluded.enabled,
			last_tick = excluded.last_tick,
			next_tick = excluded.next_tick,
			last_success = excluded.last_success,
			last_error = excluded.last_error,
			consecutive_failures = excluded.consecutive_failures
	`, schedule.ID, schedule.Interval.Milliseconds(), boolToInt(schedule.Enabled),
		formatTime(schedule.LastTick), formatTime(schedule.NextTick),
		formatTime(schedule.LastSuccess), nullString(schedule.LastError),
		schedule.ConsecutiveFailures)
	if err != nil {
		return fmt.Errorf("saving schedule %s: %w", schedule.ID, err)
	}
	return nil
}

// RecordTick appends a tick to its schedule's history.
func (s *scheduleStore) RecordTick(ctx context.Context, tick *domain.Tick) error {
	if tick == nil || tick.ScheduleID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scan_ticks
			(schedule_id, scan_id, started_at, ended_at, error,
			 files_processed, files_failed, artifacts_written, artifacts_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tick.ScheduleID, nullString(tick.ScanID),
		tick.StartedAt.UTC().Format(timeLayout), tick.EndedAt.UTC().Format(timeLayout),
		nullString(tick.Error),
		tick.FilesProcessed, tick.FilesFailed, tick.ArtifactsWritten, tick.ArtifactsFailed)
	if err != nil {
		return fmt.Errorf("recording tick: %w", err)
	}
	return nil
}

// Ticks returns up to limit ticks for a schedule, newest first.
func (s *scheduleStore) Ticks(ctx context.Context, scheduleID string, limit int) ([]domain.Tick, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT schedule_id, scan_id, started_at, ended_at, error,
		       files_processed, files_failed, artifacts_written, artifacts_failed
		FROM scan_ticks
		WHERE schedule_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, scheduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ticks: %w", err)
	}
	defer rows.Close()

	var ticks []domain.Tick //nolint:prealloc // size unknown from query
	for rows.Next() {
		tick, err := scanTick(rows)
		if err != nil {
			return nil, err
		}
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ticks: %w", err)
	}
	return ticks, nil
}

// PruneTicks keeps the newest keep ticks of every schedule.
func (s *scheduleStore) PruneTicks(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scan_ticks
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY schedule_id ORDER BY started_at DESC, id DESC
				) AS rn
				FROM scan_ticks
			) WHERE rn > ?
		)
	`, max(keep, 0))
	if err != nil {
		return fmt.Errorf("pruning ticks: %w", err)
	}
	return nil
}

func scanTick(row rowScanner) (domain.Tick, error) {
	var (
		tick               domain.Tick
		scanID, errMsg     sql.NullString
		startedAt, endedAt string
	)
	if err := row.Scan(&tick.ScheduleID, &scanID, &startedAt, &endedAt, &errMsg,
		&tick.FilesProcessed, &tick.FilesFailed, &tick.ArtifactsWritten, &tick.ArtifactsFailed); err != nil {
		return domain.Tick{}, fmt.Errorf("scanning tick: %w", err)
	}

	tick.ScanID = scanID.String
	tick.Error = errMsg.String
	tick.StartedAt = parseTime(sql.NullString{String: startedAt, Valid: true})
	tick.EndedAt = parseTime(sql.NullString{String: endedAt, Valid: true})
	return tick, nil
}

// formatTime returns nil for the zero time so it is stored as NULL.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseTime returns the zero time for NULL or unparseable values.
func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
