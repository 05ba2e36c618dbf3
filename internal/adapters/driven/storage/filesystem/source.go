package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// Ensure SourceReader implements the interface.
var _ driven.SourceReader = (*SourceReader)(nil)

// SourceReader reads descriptor files from the local filesystem.
type SourceReader struct{}

// NewSourceReader creates a new source reader.
func NewSourceReader() *SourceReader {
	return &SourceReader{}
}

// List returns matching regular files in dir, ordered by name.
func (r *SourceReader) List(_ context.Context, dir, extension string) ([]domain.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !domain.MatchesExtension(entry.Name(), extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info; next listing won't see it.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, domain.SourceFile{
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat describes a single file.
func (r *SourceReader) Stat(_ context.Context, path string) (domain.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("%w: %w", domain.ErrUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		return domain.SourceFile{}, fmt.Errorf("%w: %s is not a regular file", domain.ErrUnreadable, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.SourceFile{}, err
	}
	return domain.SourceFile{Path: abs, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Read returns the content of a file.
func (r *SourceReader) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", domain.ErrUnreadable, path)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadable, err)
	}
	return data, nil
}
