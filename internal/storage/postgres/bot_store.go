package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// BotStore implements storage.BotStore using PostgreSQL.
type BotStore struct {
	pool *Pool
}

// NewBotStore creates a new BotStore.
func NewBotStore(pool *Pool) *BotStore {
	return &BotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BotStore = (*BotStore)(nil)

// Insert adds a new bot. Returns ErrDuplicateKey if bot_id exists.
func (s *BotStore) Insert(ctx context.Context, b *domain.Bot) error {
	query := `
		INSERT INTO bots (bot_id, user_id, strategy, active)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, b.BotID, b.UserID, b.Strategy, b.Active)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert bot: %w", err)
	}
	return nil
}

// ListActive retrieves all active bots, ordered by bot_id ASC.
func (s *BotStore) ListActive(ctx context.Context) ([]*domain.Bot, error) {
	query := `
		SELECT bot_id, user_id, strategy, active
		FROM bots
		WHERE active = TRUE
		ORDER BY bot_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active bots: %w", err)
	}
	defer rows.Close()

	var result []*domain.Bot
	for rows.Next() {
		b := &domain.Bot{}
		if err := rows.Scan(&b.BotID, &b.UserID, &b.Strategy, &b.Active); err != nil {
			return nil, fmt.Errorf("scan bot: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bots: %w", err)
	}
	return result, nil
}
