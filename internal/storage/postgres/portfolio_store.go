package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// PortfolioStore implements storage.PortfolioStore using PostgreSQL.
type PortfolioStore struct {
	pool *Pool
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(pool *Pool) *PortfolioStore {
	return &PortfolioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// Upsert stores aggregates for a user, replacing any previous row.
func (s *PortfolioStore) Upsert(ctx context.Context, sum *domain.PortfolioSummary) error {
	query := `
		INSERT INTO portfolio_summaries (
			user_id, total_value, total_invested, unrealized_pnl,
			realized_pnl, total_pnl, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			total_value = EXCLUDED.total_value,
			total_invested = EXCLUDED.total_invested,
			unrealized_pnl = EXCLUDED.unrealized_pnl,
			realized_pnl = EXCLUDED.realized_pnl,
			total_pnl = EXCLUDED.total_pnl,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		sum.UserID, sum.TotalValue, sum.TotalInvested, sum.UnrealizedPnL,
		sum.RealizedPnL, sum.TotalPnL, sum.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert portfolio summary: %w", err)
	}
	return nil
}

// GetByUserID retrieves the stored aggregates for a user.
func (s *PortfolioStore) GetByUserID(ctx context.Context, userID string) (*domain.PortfolioSummary, error) {
	query := `
		SELECT user_id, total_value, total_invested, unrealized_pnl,
		       realized_pnl, total_pnl, updated_at
		FROM portfolio_summaries
		WHERE user_id = $1
	`

	sum := &domain.PortfolioSummary{}
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&sum.UserID, &sum.TotalValue, &sum.TotalInvested, &sum.UnrealizedPnL,
		&sum.RealizedPnL, &sum.TotalPnL, &sum.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get portfolio summary: %w", err)
	}
	return sum, nil
}
