package postgres

import (
	"context"
	"fmt"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (
			order_id, user_id, pair_id, order_type, quantity, price, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		o.OrderID, o.UserID, o.PairID, string(o.Type), o.Quantity, o.Price, o.PlacedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, user_id, pair_id, order_type, quantity, price, placed_at
		FROM orders
		WHERE order_id = $1
	`

	o := &domain.Order{}
	var orderType string
	err := s.pool.QueryRow(ctx, query, orderID).Scan(
		&o.OrderID, &o.UserID, &o.PairID, &orderType, &o.Quantity, &o.Price, &o.PlacedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	o.Type = domain.OrderType(orderType)
	return o, nil
}

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *Pool
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(pool *Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// Insert adds a new execution. Returns ErrDuplicateKey if order_id exists.
func (s *ExecutionStore) Insert(ctx context.Context, e *domain.OrderExecution) error {
	query := `
		INSERT INTO order_executions (order_id, price, fees, executed_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, e.OrderID, e.Price, e.Fees, e.ExecutedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// GetByOrderID retrieves the execution for an order.
func (s *ExecutionStore) GetByOrderID(ctx context.Context, orderID string) (*domain.OrderExecution, error) {
	query := `
		SELECT order_id, price, fees, executed_at
		FROM order_executions
		WHERE order_id = $1
	`

	e := &domain.OrderExecution{}
	err := s.pool.QueryRow(ctx, query, orderID).Scan(
		&e.OrderID, &e.Price, &e.Fees, &e.ExecutedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get execution by order id: %w", err)
	}
	return e, nil
}

// GetRecent retrieves the most recent limit executions, newest first.
func (s *ExecutionStore) GetRecent(ctx context.Context, limit int) ([]*domain.OrderExecution, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT order_id, price, fees, executed_at
		FROM order_executions
		ORDER BY executed_at DESC, order_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent executions: %w", err)
	}
	defer rows.Close()

	var result []*domain.OrderExecution
	for rows.Next() {
		e := &domain.OrderExecution{}
		if err := rows.Scan(&e.OrderID, &e.Price, &e.Fees, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return result, nil
}
