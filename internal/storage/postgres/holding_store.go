package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// HoldingStore implements storage.HoldingStore using PostgreSQL.
type HoldingStore struct {
	pool *Pool
}

// NewHoldingStore creates a new HoldingStore.
func NewHoldingStore(pool *Pool) *HoldingStore {
	return &HoldingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HoldingStore = (*HoldingStore)(nil)

// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, asset) exists.
func (s *HoldingStore) Insert(ctx context.Context, h *domain.Holding) error {
	query := `
		INSERT INTO holdings (
			user_id, asset, quantity, average_cost, current_value,
			invested_total, unrealized_pnl, realized_pnl
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		h.UserID, h.Asset, h.Quantity, h.AverageCost, h.CurrentValue,
		h.InvestedTotal, h.UnrealizedPnL, h.RealizedPnL,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert holding: %w", err)
	}
	return nil
}

// GetByUserID retrieves all holdings for a user, ordered by asset ASC.
func (s *HoldingStore) GetByUserID(ctx context.Context, userID string) ([]*domain.Holding, error) {
	query := `
		SELECT user_id, asset, quantity, average_cost, current_value,
		       invested_total, unrealized_pnl, realized_pnl
		FROM holdings
		WHERE user_id = $1
		ORDER BY asset ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var result []*domain.Holding
	for rows.Next() {
		h := &domain.Holding{}
		if err := rows.Scan(
			&h.UserID, &h.Asset, &h.Quantity, &h.AverageCost, &h.CurrentValue,
			&h.InvestedTotal, &h.UnrealizedPnL, &h.RealizedPnL,
		); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return result, nil
}

// ListUserIDs retrieves the distinct set of users with holdings, sorted ASC.
func (s *HoldingStore) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM holdings ORDER BY user_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}
