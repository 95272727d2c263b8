package memory

import (
	"context"
	"sort"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// AuditLogStore is an in-memory implementation of storage.AuditLogStore.
type AuditLogStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AuditLogEntry // keyed by entry_id
}

// NewAuditLogStore creates a new in-memory audit log store.
func NewAuditLogStore() *AuditLogStore {
	return &AuditLogStore{
		data: make(map[string]*domain.AuditLogEntry),
	}
}

// Compile-time interface check.
var _ storage.AuditLogStore = (*AuditLogStore)(nil)

// Append adds a log entry. Returns ErrDuplicateKey if entry_id exists.
func (s *AuditLogStore) Append(_ context.Context, e *domain.AuditLogEntry) error {
	if e == nil || e.EntryID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EntryID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[e.EntryID] = &copy
	return nil
}

// Recent retrieves the most recent limit entries, newest first.
func (s *AuditLogStore) Recent(_ context.Context, limit int) ([]*domain.AuditLogEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AuditLogEntry, 0, len(s.data))
	for _, e := range s.data {
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp > result[j].Timestamp
		}
		return result[i].EntryID < result[j].EntryID
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
