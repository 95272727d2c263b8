package storage

import (
	"context"

	"trading-audit-lab/internal/domain"
)

// HoldingStore provides read access to portfolio holdings.
type HoldingStore interface {
	// GetByUserID retrieves all holdings for a user, ordered by asset ASC.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Holding, error)

	// ListUserIDs retrieves the distinct set of users that have at least
	// one holding, sorted ASC.
	ListUserIDs(ctx context.Context) ([]string, error)

	// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, asset) exists.
	Insert(ctx context.Context, h *domain.Holding) error
}

// PortfolioStore provides access to persisted portfolio aggregates.
type PortfolioStore interface {
	// GetByUserID retrieves the stored aggregates for a user.
	// Returns ErrNotFound if not exists.
	GetByUserID(ctx context.Context, userID string) (*domain.PortfolioSummary, error)

	// Upsert stores aggregates for a user, replacing any previous row.
	Upsert(ctx context.Context, s *domain.PortfolioSummary) error
}

// OrderStore provides access to orders.
type OrderStore interface {
	// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
	Insert(ctx context.Context, o *domain.Order) error
}

// ExecutionStore provides access to order executions.
type ExecutionStore interface {
	// GetByOrderID retrieves the execution for an order.
	// Returns ErrNotFound if not exists.
	GetByOrderID(ctx context.Context, orderID string) (*domain.OrderExecution, error)

	// GetRecent retrieves the most recent limit executions,
	// ordered by executed_at DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.OrderExecution, error)

	// Insert adds a new execution. Returns ErrDuplicateKey if order_id exists.
	Insert(ctx context.Context, e *domain.OrderExecution) error
}

// TradingPairStore provides access to trading pair definitions.
type TradingPairStore interface {
	// GetByID retrieves a pair by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, pairID string) (*domain.TradingPair, error)

	// ListActive retrieves all active pairs, ordered by pair_id ASC.
	ListActive(ctx context.Context) ([]*domain.TradingPair, error)

	// Insert adds a new pair. Returns ErrDuplicateKey if pair_id exists.
	Insert(ctx context.Context, p *domain.TradingPair) error
}

// BotStore provides access to configured trading bots.
type BotStore interface {
	// ListActive retrieves all active bots, ordered by bot_id ASC.
	ListActive(ctx context.Context) ([]*domain.Bot, error)

	// Insert adds a new bot. Returns ErrDuplicateKey if bot_id exists.
	Insert(ctx context.Context, b *domain.Bot) error
}

// AuditLogStore is an append-only sink recording that an audit ran.
// Callers treat append failures as log-and-continue.
type AuditLogStore interface {
	// Append adds a log entry. Returns ErrDuplicateKey if entry_id exists.
	Append(ctx context.Context, e *domain.AuditLogEntry) error

	// Recent retrieves the most recent limit entries, ordered by timestamp DESC.
	Recent(ctx context.Context, limit int) ([]*domain.AuditLogEntry, error)
}

// FindingStore archives comprehensive-audit findings per run.
type FindingStore interface {
	// InsertBulk stores all findings of a run. Fails the entire batch on
	// any duplicate finding ID within the run.
	InsertBulk(ctx context.Context, runID string, findings []domain.AuditFinding) error

	// GetByRunID retrieves all findings of a run, ordered by timestamp ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.AuditFinding, error)

	// ListRunIDs retrieves the most recent limit run IDs, newest first.
	ListRunIDs(ctx context.Context, limit int) ([]string, error)
}
