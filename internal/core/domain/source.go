package domain

import (
	"strings"
	"time"
)

// DefaultDescriptorExtension is the suffix of monitored descriptor files.
const DefaultDescriptorExtension = ".hxr"

// SourceFile is a descriptor file discovered during a pass.
type SourceFile struct {
	// Path is the absolute file path.
	Path string

	// ModTime is the filesystem modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64
}

// MatchesExtension returns true if name ends with ext.
// An empty ext matches nothing.
func MatchesExtension(name, ext string) bool {
	return ext != "" && strings.HasSuffix(name, ext)
}

// FileRecord is what the engine remembers about a source file it has fully
// processed. It is an efficiency hint only: artifacts are written or left
// alone by comparing their bytes, never by consulting a record.
type FileRecord struct {
	// Path is the absolute source file path.
	Path string

	// ModTime is the modification time observed when processed.
	ModTime time.Time

	// Size is the size observed when processed.
	Size int64

	// Digest is the content digest, e.g. "sha256:...".
	Digest string

	// ProcessedAt is when the file was last processed without failures.
	ProcessedAt time.Time
}

// Unchanged returns true if the file's stat matches the record.
func (r *FileRecord) Unchanged(f SourceFile) bool {
	if r == nil {
		return false
	}
	return r.Size == f.Size && r.ModTime.Equal(f.ModTime)
}
