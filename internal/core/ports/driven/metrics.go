package driven

import (
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// Failure stages reported to SyncMetrics.
const (
	StageRead   = "read"
	StageParse  = "parse"
	StageRender = "render"
	StageWrite  = "write"
	StageList   = "list"
)

// SyncMetrics receives synchronisation observations.
type SyncMetrics interface {
	// ObserveArtifact counts one change gate decision.
	ObserveArtifact(kind domain.ArtifactKind, outcome domain.WriteOutcome)

	// ObserveFailure counts a contained failure at the given stage.
	ObserveFailure(stage string)

	// ObserveScan records a completed pass.
	ObserveScan(trigger domain.Trigger, duration time.Duration)
}
