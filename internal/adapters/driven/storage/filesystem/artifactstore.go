package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// Permissions for artifacts and the directories holding them.
const (
	artifactMode = 0o644
	dirMode      = 0o755
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore persists artifacts as plain files.
type ArtifactStore struct{}

// NewArtifactStore creates a new artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{}
}

// Read returns the current bytes at path.
func (s *ArtifactStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write atomically replaces the file at path.
func (s *ArtifactStore) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return atomicwriter.WriteFile(path, content, artifactMode)
}
