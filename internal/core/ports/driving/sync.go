package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// SyncOrchestrator keeps rendered artifacts in step with descriptor files.
type SyncOrchestrator interface {
	// ProcessFile synchronises one descriptor file. Failures are reported in
	// the returned FileReport and never abort sibling resources.
	// An untargeted run that succeeds records the file.
	ProcessFile(ctx context.Context, path string, opts domain.ParseOptions) domain.FileReport

	// ScanAll processes every descriptor file that changed since it was last
	// recorded. Only a failure to list the source directory is returned.
	ScanAll(ctx context.Context, trigger domain.Trigger) (*domain.ScanReport, error)

	// Resync reprocesses every descriptor file for one topology,
	// ignoring file records.
	Resync(ctx context.Context, req domain.ResyncRequest) (*domain.ScanReport, error)

	// Status returns the current state of the orchestrator.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of the orchestrator.
type SyncStatus struct {
	// SourceDir is the monitored directory.
	SourceDir string

	// Running is the number of passes in progress.
	Running int

	// LastScan is the most recent completed pass, if any.
	LastScan *domain.ScanReport

	// TrackedFiles is the number of recorded source files.
	TrackedFiles int
}

// Scheduler runs periodic scans.
type Scheduler interface {
	// Setup starts periodic scanning every interval and returns true.
	// An interval of zero or less disables scanning and returns false.
	Setup(ctx context.Context, interval time.Duration) bool

	// Stop gracefully stops scanning and waits for an in-flight tick.
	Stop() error

	// History returns up to limit recorded ticks, newest first.
	// It is empty when no schedule store is configured.
	History(ctx context.Context, limit int) ([]domain.Tick, error)
}

// ChangeListener receives out-of-band change notifications.
type ChangeListener interface {
	// OnConfigurationChange resynchronises the topology named in properties.
	// A missing or blank name returns domain.ErrInvalidNotification.
	OnConfigurationChange(ctx context.Context, properties map[string]string) (*domain.ScanReport, error)
}
