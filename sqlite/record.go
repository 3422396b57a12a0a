package sqlite

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/medreg"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ medreg.DatasetStore = (*RecordStore)(nil)
	_ medreg.RecordReader = (*RecordStore)(nil)
)

// RecordStore implements medreg.DatasetStore using SQLite. A record whose
// content was already stored for the same source is skipped, so repeated
// runs do not duplicate unchanged profiles.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content []byte) string {
	h := xxhash.Sum64(content)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// PushData inserts the records in a single transaction.
func (s *RecordStore) PushData(ctx context.Context, records ...medreg.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO records (id, source, url, data, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		// Map keys are encoded in sorted order, so equal records hash equally.
		data, err := json.Marshal(rec)
		if err != nil {
			return medreg.Errorf(medreg.EINVALID, "encode record %s: %v", rec.String(medreg.FieldURL), err)
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			rec.String(medreg.FieldSource),
			rec.String(medreg.FieldURL),
			string(data),
			hashContent(data),
			now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FindRecords implements medreg.RecordReader.
func (s *RecordStore) FindRecords(ctx context.Context, filter medreg.RecordFilter) ([]*medreg.StoredRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source, url, data, created_at FROM records WHERE 1=1")

	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, max(filter.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*medreg.StoredRecord
	for rows.Next() {
		var rec medreg.StoredRecord
		var data, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.URL, &data, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("record %s: created_at: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountRecords implements medreg.RecordReader.
func (s *RecordStore) CountRecords(ctx context.Context, source string) (int, error) {
	var n int
	var err error
	if source == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE source = ?", source).Scan(&n)
	}
	return n, err
}
