package clickhouse

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// FindingStore implements storage.FindingStore using ClickHouse.
// Findings are archived per run for historical analysis.
type FindingStore struct {
	conn *Conn
}

// NewFindingStore creates a new FindingStore.
func NewFindingStore(conn *Conn) *FindingStore {
	return &FindingStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FindingStore = (*FindingStore)(nil)

// InsertBulk stores all findings of a run using a prepared batch.
func (s *FindingStore) InsertBulk(ctx context.Context, runID string, findings []domain.AuditFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(findings) == 0 {
		return nil
	}

	// Reject duplicate finding IDs within the run (MergeTree does not
	// enforce uniqueness).
	seen := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		if f.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[f.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[f.ID] = struct{}{}
	}

	existing, err := s.existingIDs(ctx, runID)
	if err != nil {
		return err
	}
	for id := range seen {
		if _, dup := existing[id]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO audit_findings (
			run_id, finding_id, area, component, status, score,
			notes, recommendations, ts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare findings batch: %w", err)
	}

	for _, f := range findings {
		if err := batch.Append(
			runID, f.ID, string(f.Area), f.Component, string(f.Status), f.Score,
			f.Notes, f.Recommendations, f.Timestamp,
		); err != nil {
			return fmt.Errorf("append finding to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send findings batch: %w", err)
	}
	return nil
}

// GetByRunID retrieves all findings of a run, ordered by timestamp ASC.
func (s *FindingStore) GetByRunID(ctx context.Context, runID string) ([]domain.AuditFinding, error) {
	query := `
		SELECT finding_id, area, component, status, score,
		       notes, recommendations, ts
		FROM audit_findings
		WHERE run_id = ?
		ORDER BY ts ASC, finding_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var result []domain.AuditFinding
	for rows.Next() {
		var (
			f            domain.AuditFinding
			area, status string
		)
		if err := rows.Scan(
			&f.ID, &area, &f.Component, &status, &f.Score,
			&f.Notes, &f.Recommendations, &f.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Area = domain.AuditArea(area)
		f.Status = domain.FindingStatus(status)
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}

	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// ListRunIDs retrieves the most recent limit run IDs, newest first.
func (s *FindingStore) ListRunIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT run_id
		FROM audit_findings
		GROUP BY run_id
		ORDER BY min(ts) DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query run ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run ids: %w", err)
	}
	return ids, nil
}

// existingIDs returns the set of finding IDs already stored for a run.
func (s *FindingStore) existingIDs(ctx context.Context, runID string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT finding_id FROM audit_findings WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query existing finding ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan existing finding id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing finding ids: %w", err)
	}
	return ids, nil
}
