package memory

import (
	"context"
	"sort"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// HoldingStore is an in-memory implementation of storage.HoldingStore.
type HoldingStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Holding // user_id -> asset -> holding
}

// NewHoldingStore creates a new in-memory holding store.
func NewHoldingStore() *HoldingStore {
	return &HoldingStore{
		data: make(map[string]map[string]*domain.Holding),
	}
}

// Compile-time interface check.
var _ storage.HoldingStore = (*HoldingStore)(nil)

// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, asset) exists.
func (s *HoldingStore) Insert(_ context.Context, h *domain.Holding) error {
	if h == nil || h.UserID == "" || h.Asset == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byAsset, ok := s.data[h.UserID]
	if !ok {
		byAsset = make(map[string]*domain.Holding)
		s.data[h.UserID] = byAsset
	}
	if _, exists := byAsset[h.Asset]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *h
	byAsset[h.Asset] = &copy
	return nil
}

// GetByUserID retrieves all holdings for a user, ordered by asset ASC.
func (s *HoldingStore) GetByUserID(_ context.Context, userID string) ([]*domain.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Holding
	for _, h := range s.data[userID] {
		copy := *h
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Asset < result[j].Asset
	})

	return result, nil
}

// ListUserIDs retrieves the distinct set of users with holdings, sorted ASC.
func (s *HoldingStore) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for userID, byAsset := range s.data {
		if len(byAsset) > 0 {
			ids = append(ids, userID)
		}
	}
	sort.Strings(ids)

	return ids, nil
}
