package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// AuditLogStore implements storage.AuditLogStore using PostgreSQL.
type AuditLogStore struct {
	pool *Pool
}

// NewAuditLogStore creates a new AuditLogStore.
func NewAuditLogStore(pool *Pool) *AuditLogStore {
	return &AuditLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuditLogStore = (*AuditLogStore)(nil)

// Append adds a log entry. Returns ErrDuplicateKey if entry_id exists.
func (s *AuditLogStore) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (entry_id, kind, ref_id, outcome, ts)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, e.EntryID, e.Kind, e.RefID, e.Outcome, e.Timestamp)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append audit log entry: %w", err)
	}
	return nil
}

// Recent retrieves the most recent limit entries, newest first.
func (s *AuditLogStore) Recent(ctx context.Context, limit int) ([]*domain.AuditLogEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT entry_id, kind, ref_id, outcome, ts
		FROM audit_log
		ORDER BY ts DESC, entry_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var result []*domain.AuditLogEntry
	for rows.Next() {
		e := &domain.AuditLogEntry{}
		if err := rows.Scan(&e.EntryID, &e.Kind, &e.RefID, &e.Outcome, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}
	return result, nil
}
