package driven

import (
	"context"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// SourceReader gives access to descriptor files.
type SourceReader interface {
	// List returns the regular files in dir whose names end with extension,
	// ordered by name. Files vanishing during the listing are omitted.
	List(ctx context.Context, dir, extension string) ([]domain.SourceFile, error)

	// Stat describes a single file.
	Stat(ctx context.Context, path string) (domain.SourceFile, error)

	// Read returns the content of a file.
	// A missing or unreadable file yields an error matching domain.ErrUnreadable.
	Read(ctx context.Context, path string) ([]byte, error)
}
