package driven

import "context"

// ArtifactStore persists rendered artifacts.
type ArtifactStore interface {
	// Read returns the current bytes at path.
	// Returns domain.ErrNotFound if nothing is stored there.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the bytes at path, creating parent directories as needed.
	// Readers never observe a partially written artifact.
	Write(ctx context.Context, path string, content []byte) error
}
