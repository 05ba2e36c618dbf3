package driven

import (
	"context"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// FileRecordStore remembers source files that were fully processed.
// Implementations must be safe for concurrent use.
type FileRecordStore interface {
	// Get retrieves the record for a source path.
	// Returns domain.ErrNotFound if the path was never recorded.
	Get(ctx context.Context, path string) (*domain.FileRecord, error)

	// Save stores or replaces a record.
	Save(ctx context.Context, record domain.FileRecord) error

	// Delete removes the record for a path. Missing paths are not an error.
	Delete(ctx context.Context, path string) error

	// List returns all records ordered by path.
	List(ctx context.Context) ([]domain.FileRecord, error)
}
