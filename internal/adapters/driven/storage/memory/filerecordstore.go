package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// Ensure FileRecordStore implements the interface.
var _ driven.FileRecordStore = (*FileRecordStore)(nil)

// FileRecordStore is an in-memory implementation of driven.FileRecordStore.
type FileRecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.FileRecord
}

// NewFileRecordStore creates a new in-memory file record store.
func NewFileRecordStore() *FileRecordStore {
	return &FileRecordStore{
		records: make(map[string]domain.FileRecord),
	}
}

// Get retrieves the record for a source path.
func (s *FileRecordStore) Get(_ context.Context, path string) (*domain.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Save stores or replaces a record.
func (s *FileRecordStore) Save(_ context.Context, record domain.FileRecord) error {
	if record.Path == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Path] = record
	return nil
}

// Delete removes the record for a path.
func (s *FileRecordStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, path)
	return nil
}

// List returns all records ordered by path.
func (s *FileRecordStore) List(_ context.Context) ([]domain.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.FileRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}
