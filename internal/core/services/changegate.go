package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/moby/locker"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// ChangeGate persists an artifact only when its bytes differ from what is
// already stored. Read, compare and write for one path happen under a
// per-path lock, so concurrent passes cannot interleave on an artifact.
type ChangeGate struct {
	store driven.ArtifactStore
	locks *locker.Locker
}

// NewChangeGate creates a change gate over an artifact store.
func NewChangeGate(store driven.ArtifactStore) *ChangeGate {
	return &ChangeGate{
		store: store,
		locks: locker.New(),
	}
}

// WriteIfChanged writes the artifact if it is new or its content differs.
func (g *ChangeGate) WriteIfChanged(ctx context.Context, artifact domain.Artifact) (domain.WriteOutcome, error) {
	g.locks.Lock(artifact.Path)
	defer g.locks.Unlock(artifact.Path) //nolint:errcheck // only fails for unknown names

	fields := logger.Fields{
		"kind":     artifact.Kind.String(),
		"resource": artifact.Name,
		"path":     artifact.Path,
	}

	current, err := g.store.Read(ctx, artifact.Path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if err := g.store.Write(ctx, artifact.Path, artifact.Content); err != nil {
			return domain.OutcomeFailed, fmt.Errorf("%w: %s: %w", domain.ErrWrite, artifact.Path, err)
		}
		logger.With(fields).Info("saved new resource")
		return domain.OutcomeCreated, nil

	case err != nil:
		return domain.OutcomeFailed, fmt.Errorf("%w: read %s: %w", domain.ErrWrite, artifact.Path, err)

	case bytes.Equal(current, artifact.Content):
		logger.With(fields).Info("resource did not change")
		return domain.OutcomeUnchanged, nil
	}

	if err := g.store.Write(ctx, artifact.Path, artifact.Content); err != nil {
		return domain.OutcomeFailed, fmt.Errorf("%w: %s: %w", domain.ErrWrite, artifact.Path, err)
	}
	logger.With(fields).Info("saved resource")
	return domain.OutcomeUpdated, nil
}
