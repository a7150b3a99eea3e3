package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/lineq"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ lineq.HistoryService = (*HistoryService)(nil)

// HistoryService implements lineq.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

const recordColumns = "id, host, port, mode, query, body, body_hash, code, detail, created_at"

// CreateRecord stores a new record.
func (s *HistoryService) CreateRecord(ctx context.Context, r *lineq.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	r.BodyHash = hashContent(r.Body)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Host, r.Port, r.Mode.String(), r.Query, r.Body, r.BodyHash, r.Code, r.Detail,
		r.CreatedAt.Format(timeLayout))

	return err
}

// FindRecordByID retrieves a record by ID.
func (s *HistoryService) FindRecordByID(ctx context.Context, id string) (*lineq.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE id = ?
	`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lineq.Errorf(lineq.ENOTFOUND, "record not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *HistoryService) FindRecords(ctx context.Context, filter lineq.RecordFilter) ([]*lineq.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Host != nil {
		query.WriteString(" AND host = ?")
		args = append(args, *filter.Host)
	}
	if filter.Code != nil {
		query.WriteString(" AND code = ?")
		args = append(args, *filter.Code)
	}
	if filter.FailedOnly {
		query.WriteString(" AND code != ''")
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*lineq.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// DeleteRecord permanently removes a record.
func (s *HistoryService) DeleteRecord(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lineq.Errorf(lineq.ENOTFOUND, "record not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*lineq.Record, error) {
	var r lineq.Record
	var mode, createdAt string

	if err := row.Scan(&r.ID, &r.Host, &r.Port, &mode, &r.Query, &r.Body, &r.BodyHash,
		&r.Code, &r.Detail, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if r.Mode, err = lineq.ParseSearchMode(mode); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
