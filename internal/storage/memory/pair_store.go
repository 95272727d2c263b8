package memory

import (
	"context"
	"sort"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// TradingPairStore is an in-memory implementation of storage.TradingPairStore.
type TradingPairStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradingPair // keyed by pair_id
}

// NewTradingPairStore creates a new in-memory trading pair store.
func NewTradingPairStore() *TradingPairStore {
	return &TradingPairStore{
		data: make(map[string]*domain.TradingPair),
	}
}

// Compile-time interface check.
var _ storage.TradingPairStore = (*TradingPairStore)(nil)

// Insert adds a new pair. Returns ErrDuplicateKey if pair_id exists.
func (s *TradingPairStore) Insert(_ context.Context, p *domain.TradingPair) error {
	if p == nil || p.PairID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.PairID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[p.PairID] = &copy
	return nil
}

// GetByID retrieves a pair by its ID. Returns ErrNotFound if not exists.
func (s *TradingPairStore) GetByID(_ context.Context, pairID string) (*domain.TradingPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[pairID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// ListActive retrieves all active pairs, ordered by pair_id ASC.
func (s *TradingPairStore) ListActive(_ context.Context) ([]*domain.TradingPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradingPair
	for _, p := range s.data {
		if p.Active {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PairID < result[j].PairID
	})

	return result, nil
}
