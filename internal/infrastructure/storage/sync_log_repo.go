package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	domainErrors "github.com/jbctechsolutions/markkeep/internal/domain/errors"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
)

// Compile-time check that SyncLogRepository implements SyncHistoryPort.
var _ ports.SyncHistoryPort = (*SyncLogRepository)(nil)

// SyncLogRepository implements SyncHistoryPort using the sync_log table.
type SyncLogRepository struct {
	db *sql.DB
}

// NewSyncLogRepository creates a new sync log repository.
func NewSyncLogRepository(db *sql.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// SavePass appends a pass record to the log.
func (r *SyncLogRepository) SavePass(ctx context.Context, record *domainSync.PassRecord) error {
	if record == nil {
		return domainErrors.NewError(domainErrors.CodeValidation, "pass record is required", nil)
	}
	if record.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "pass record ID is required", nil)
	}

	query := `
		INSERT INTO sync_log (id, strategy, outcome, started_at, completed_at, changes, version, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(record.Strategy),
		string(record.Outcome),
		record.StartedAt.Format(time.RFC3339),
		record.CompletedAt.Format(time.RFC3339),
		record.Changes,
		record.Version,
		nullableString(record.Reason),
	)

	if err != nil {
		return fmt.Errorf("failed to save pass record: %w", err)
	}

	return nil
}

// ListPasses returns the most recent passes, newest first.
// A limit of 0 returns all records.
func (r *SyncLogRepository) ListPasses(ctx context.Context, limit int) ([]*domainSync.PassRecord, error) {
	query := `
		SELECT id, strategy, outcome, started_at, completed_at, changes, version, reason
		FROM sync_log
		ORDER BY started_at DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pass records: %w", err)
	}
	defer rows.Close()

	var records []*domainSync.PassRecord
	for rows.Next() {
		record, err := scanPassRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pass records: %w", err)
	}

	return records, nil
}

// LastPass returns the most recent pass record, or nil when the log is empty.
func (r *SyncLogRepository) LastPass(ctx context.Context) (*domainSync.PassRecord, error) {
	query := `
		SELECT id, strategy, outcome, started_at, completed_at, changes, version, reason
		FROM sync_log
		ORDER BY started_at DESC
		LIMIT 1
	`

	record, err := scanPassRow(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last pass: %w", err)
	}

	return record, nil
}

// Purge removes all pass records and returns the number removed.
func (r *SyncLogRepository) Purge(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sync_log`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge pass records: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check purge result: %w", err)
	}

	return int(removed), nil
}

// scanPassRow scans a single row into a pass record.
func scanPassRow(row *sql.Row) (*domainSync.PassRecord, error) {
	var (
		id, strategy, outcome  string
		startedAt, completedAt string
		changes                int
		version                int64
		reason                 sql.NullString
	)

	err := row.Scan(&id, &strategy, &outcome, &startedAt, &completedAt, &changes, &version, &reason)
	if err != nil {
		return nil, err
	}

	return buildPassRecord(id, strategy, outcome, startedAt, completedAt, changes, version, reason)
}

// scanPassRows scans rows into a pass record.
func scanPassRows(rows *sql.Rows) (*domainSync.PassRecord, error) {
	var (
		id, strategy, outcome  string
		startedAt, completedAt string
		changes                int
		version                int64
		reason                 sql.NullString
	)

	err := rows.Scan(&id, &strategy, &outcome, &startedAt, &completedAt, &changes, &version, &reason)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pass record: %w", err)
	}

	return buildPassRecord(id, strategy, outcome, startedAt, completedAt, changes, version, reason)
}

// buildPassRecord constructs a PassRecord from database fields.
func buildPassRecord(id, strategy, outcome, startedAt, completedAt string, changes int, version int64, reason sql.NullString) (*domainSync.PassRecord, error) {
	record := &domainSync.PassRecord{
		ID:       id,
		Strategy: domainSync.Strategy(strategy),
		Outcome:  domainSync.Outcome(outcome),
		Changes:  changes,
		Version:  version,
	}

	if reason.Valid {
		record.Reason = reason.String
	}

	parsedStartedAt, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	record.StartedAt = parsedStartedAt

	parsedCompletedAt, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse completed_at: %w", err)
	}
	record.CompletedAt = parsedCompletedAt

	return record, nil
}
