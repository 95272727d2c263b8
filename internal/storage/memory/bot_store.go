package memory

import (
	"context"
	"sort"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// BotStore is an in-memory implementation of storage.BotStore.
type BotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Bot // keyed by bot_id
}

// NewBotStore creates a new in-memory bot store.
func NewBotStore() *BotStore {
	return &BotStore{
		data: make(map[string]*domain.Bot),
	}
}

// Compile-time interface check.
var _ storage.BotStore = (*BotStore)(nil)

// Insert adds a new bot. Returns ErrDuplicateKey if bot_id exists.
func (s *BotStore) Insert(_ context.Context, b *domain.Bot) error {
	if b == nil || b.BotID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[b.BotID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *b
	s.data[b.BotID] = &copy
	return nil
}

// ListActive retrieves all active bots, ordered by bot_id ASC.
func (s *BotStore) ListActive(_ context.Context) ([]*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bot
	for _, b := range s.data {
		if b.Active {
			copy := *b
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BotID < result[j].BotID
	})

	return result, nil
}
