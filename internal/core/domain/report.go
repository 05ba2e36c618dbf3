package domain

import "time"

// Trigger identifies what started a pass.
type Trigger string

// Triggers.
const (
	TriggerScheduled    Trigger = "scheduled"
	TriggerManual       Trigger = "manual"
	TriggerNotification Trigger = "notification"
	TriggerWatch        Trigger = "watch"
)

// String returns the string representation.
func (t Trigger) String() string {
	return string(t)
}

// ArtifactResult is the outcome for one provider config or descriptor.
type ArtifactResult struct {
	Kind    ArtifactKind
	Name    string
	Path    string
	Outcome WriteOutcome

	// Err is set when Outcome is OutcomeFailed.
	Err error
}

// FileReport is the outcome of processing one descriptor file.
type FileReport struct {
	// Path is the descriptor file.
	Path string

	// Skipped is true when the file was not processed because its record
	// showed no change.
	Skipped bool

	// Err is a file-level failure (unreadable or unparseable).
	Err error

	// Artifacts holds per-resource outcomes in processing order.
	Artifacts []ArtifactResult
}

// FailedArtifacts returns the number of resources that failed.
func (r FileReport) FailedArtifacts() int {
	n := 0
	for _, a := range r.Artifacts {
		if a.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Succeeded returns true if the file and every resource in it were handled.
func (r FileReport) Succeeded() bool {
	return r.Err == nil && r.FailedArtifacts() == 0
}

// ScanReport summarises one pass over the source directory.
type ScanReport struct {
	ID        string
	Trigger   Trigger
	Topology  string
	StartedAt time.Time
	EndedAt   time.Time

	FilesSeen      int
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int

	Created   int
	Updated   int
	Unchanged int
	Failed    int

	Files []FileReport
}

// Add folds a file report into the totals.
func (r *ScanReport) Add(fr FileReport) {
	r.FilesSeen++
	r.Files = append(r.Files, fr)
	if fr.Skipped {
		r.FilesSkipped++
		return
	}
	r.FilesProcessed++
	if fr.Err != nil {
		r.FilesFailed++
	}
	for _, a := range fr.Artifacts {
		switch a.Outcome {
		case OutcomeCreated:
			r.Created++
		case OutcomeUpdated:
			r.Updated++
		case OutcomeUnchanged:
			r.Unchanged++
		case OutcomeFailed:
			r.Failed++
		}
	}
}

// Written returns the number of artifacts created or updated.
func (r *ScanReport) Written() int {
	return r.Created + r.Updated
}

// Duration returns how long the pass took.
func (r *ScanReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
