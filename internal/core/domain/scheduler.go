package domain

import "time"

// ScheduleDescriptorScan identifies the periodic scan of the source directory.
const ScheduleDescriptorScan = "descriptor-scan"

// TickRetention is how many ticks are kept per schedule.
const TickRetention = 100

// ScanSchedule is the persisted state of a periodic scan.
type ScanSchedule struct {
	ID       string
	Interval time.Duration
	Enabled  bool

	// LastTick is when the most recent tick started.
	LastTick time.Time

	// NextTick is when the following tick is expected.
	NextTick time.Time

	// LastSuccess is when a tick last finished without a listing error.
	LastSuccess time.Time

	// LastError is the error of the most recent tick, empty after a success.
	LastError string

	// ConsecutiveFailures counts failed ticks since the last success.
	ConsecutiveFailures int
}

// Record folds a finished tick into the schedule.
func (s *ScanSchedule) Record(t Tick) {
	s.LastTick = t.StartedAt
	s.NextTick = t.StartedAt.Add(s.Interval)
	if t.Succeeded() {
		s.LastSuccess = t.EndedAt
		s.LastError = ""
		s.ConsecutiveFailures = 0
		return
	}
	s.LastError = t.Error
	s.ConsecutiveFailures++
}

// Tick is the outcome of one scheduled scan.
type Tick struct {
	ScheduleID string

	// ScanID links the tick to the scan report it produced, if any.
	ScanID string

	StartedAt time.Time
	EndedAt   time.Time

	// Error is set when the source directory could not be listed.
	Error string

	FilesProcessed   int
	FilesFailed      int
	ArtifactsWritten int
	ArtifactsFailed  int
}

// NewTick summarises a scan report. Per-file failures are counted, only a
// pass-level err marks the tick failed.
func NewTick(scheduleID string, startedAt, endedAt time.Time, report *ScanReport, err error) Tick {
	t := Tick{
		ScheduleID: scheduleID,
		StartedAt:  startedAt,
		EndedAt:    endedAt,
	}
	if report != nil {
		t.ScanID = report.ID
		t.FilesProcessed = report.FilesProcessed
		t.FilesFailed = report.FilesFailed
		t.ArtifactsWritten = report.Written()
		t.ArtifactsFailed = report.Failed
	}
	if err != nil {
		t.Error = err.Error()
	}
	return t
}

// Succeeded returns true if the pass ran to completion.
func (t Tick) Succeeded() bool {
	return t.Error == ""
}

// Duration returns how long the tick took.
func (t Tick) Duration() time.Duration {
	return t.EndedAt.Sub(t.StartedAt)
}
