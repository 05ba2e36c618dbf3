package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// fileRecordStore implements driven.FileRecordStore.
// Times are stored as Unix nanoseconds so a stored ModTime compares equal
// to a fresh stat of the same file.
type fileRecordStore struct {
	store *Store
}

var _ driven.FileRecordStore = (*fileRecordStore)(nil)

// Get retrieves the record for a source path.
func (s *fileRecordStore) Get(ctx context.Context, path string) (*domain.FileRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT path, mod_time_ns, size, digest, processed_at_ns
		FROM file_records WHERE path = ?
	`, path)

	rec, err := scanFileRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning file record: %w", err)
	}
	return rec, nil
}

// Save stores or replaces a record.
func (s *fileRecordStore) Save(ctx context.Context, record domain.FileRecord) error {
	if record.Path == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO file_records (path, mod_time_ns, size, digest, processed_at_ns)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mod_time_ns = excluded.mod_time_ns,
			size = excluded.size,
			digest = excluded.digest,
			processed_at_ns = excluded.processed_at_ns
	`, record.Path, record.ModTime.UnixNano(), record.Size, record.Digest, record.ProcessedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving file record: %w", err)
	}
	return nil
}

// Delete removes the record for a path.
func (s *fileRecordStore) Delete(ctx context.Context, path string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM file_records WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting file record: %w", err)
	}
	return nil
}

// List returns all records ordered by path.
func (s *fileRecordStore) List(ctx context.Context) ([]domain.FileRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT path, mod_time_ns, size, digest, processed_at_ns
		FROM file_records ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying file records: %w", err)
	}
	defer rows.Close()

	var records []domain.FileRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file records: %w", err)
	}
	return records, nil
}

func scanFileRecord(row rowScanner) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var modTime, processedAt int64
	if err := row.Scan(&rec.Path, &modTime, &rec.Size, &rec.Digest, &processedAt); err != nil {
		return nil, err
	}
	rec.ModTime = time.Unix(0, modTime)
	rec.ProcessedAt = time.Unix(0, processedAt)
	return &rec, nil
}
