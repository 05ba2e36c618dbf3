package driven

import (
	"context"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// DescriptorParser extracts provider configs and descriptors from a source file.
type DescriptorParser interface {
	// Parse reads the descriptor file at path.
	// A malformed file yields an error matching domain.ErrParse.
	// With a targeted opts, only the named topology and the provider
	// configs it references are returned.
	Parse(ctx context.Context, path string, opts domain.ParseOptions) (*domain.ParseResult, error)
}
