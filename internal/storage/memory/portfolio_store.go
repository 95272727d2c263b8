package memory

import (
	"context"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// PortfolioStore is an in-memory implementation of storage.PortfolioStore.
type PortfolioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PortfolioSummary // keyed by user_id
}

// NewPortfolioStore creates a new in-memory portfolio aggregate store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{
		data: make(map[string]*domain.PortfolioSummary),
	}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// Upsert stores aggregates for a user, replacing any previous row.
func (s *PortfolioStore) Upsert(_ context.Context, sum *domain.PortfolioSummary) error {
	if sum == nil || sum.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *sum
	s.data[sum.UserID] = &copy
	return nil
}

// GetByUserID retrieves the stored aggregates for a user.
func (s *PortfolioStore) GetByUserID(_ context.Context, userID string) (*domain.PortfolioSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *sum
	return &copy, nil
}
