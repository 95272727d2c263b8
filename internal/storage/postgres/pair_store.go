package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// TradingPairStore implements storage.TradingPairStore using PostgreSQL.
type TradingPairStore struct {
	pool *Pool
}

// NewTradingPairStore creates a new TradingPairStore.
func NewTradingPairStore(pool *Pool) *TradingPairStore {
	return &TradingPairStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradingPairStore = (*TradingPairStore)(nil)

// Insert adds a new pair. Returns ErrDuplicateKey if pair_id exists.
func (s *TradingPairStore) Insert(ctx context.Context, p *domain.TradingPair) error {
	query := `
		INSERT INTO trading_pairs (pair_id, base, quote, active)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, p.PairID, p.Base, p.Quote, p.Active)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trading pair: %w", err)
	}
	return nil
}

// GetByID retrieves a pair by its ID. Returns ErrNotFound if not exists.
func (s *TradingPairStore) GetByID(ctx context.Context, pairID string) (*domain.TradingPair, error) {
	query := `
		SELECT pair_id, base, quote, active
		FROM trading_pairs
		WHERE pair_id = $1
	`

	p := &domain.TradingPair{}
	err := s.pool.QueryRow(ctx, query, pairID).Scan(&p.PairID, &p.Base, &p.Quote, &p.Active)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trading pair by id: %w", err)
	}
	return p, nil
}

// ListActive retrieves all active pairs, ordered by pair_id ASC.
func (s *TradingPairStore) ListActive(ctx context.Context) ([]*domain.TradingPair, error) {
	query := `
		SELECT pair_id, base, quote, active
		FROM trading_pairs
		WHERE active = TRUE
		ORDER BY pair_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active pairs: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradingPair
	for rows.Next() {
		p := &domain.TradingPair{}
		if err := rows.Scan(&p.PairID, &p.Base, &p.Quote, &p.Active); err != nil {
			return nil, fmt.Errorf("scan trading pair: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading pairs: %w", err)
	}
	return result, nil
}
