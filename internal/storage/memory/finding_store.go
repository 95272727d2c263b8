package memory

import (
	"context"
	"sort"
	"sync"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// FindingStore is an in-memory implementation of storage.FindingStore.
type FindingStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.AuditFinding // run_id -> findings
	seen map[string]int64                 // run_id -> first finding timestamp
}

// NewFindingStore creates a new in-memory finding store.
func NewFindingStore() *FindingStore {
	return &FindingStore{
		runs: make(map[string][]domain.AuditFinding),
		seen: make(map[string]int64),
	}
}

// Compile-time interface check.
var _ storage.FindingStore = (*FindingStore)(nil)

// InsertBulk stores all findings of a run.
func (s *FindingStore) InsertBulk(_ context.Context, runID string, findings []domain.AuditFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(findings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.runs[runID]))
	for _, f := range s.runs[runID] {
		existing[f.ID] = struct{}{}
	}
	for _, f := range findings {
		if f.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := existing[f.ID]; dup {
			return storage.ErrDuplicateKey
		}
		existing[f.ID] = struct{}{}
	}

	if _, known := s.seen[runID]; !known {
		s.seen[runID] = findings[0].Timestamp
	}
	s.runs[runID] = append(s.runs[runID], findings...)
	return nil
}

// GetByRunID retrieves all findings of a run, ordered by timestamp ASC.
func (s *FindingStore) GetByRunID(_ context.Context, runID string) ([]domain.AuditFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.runs[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	result := make([]domain.AuditFinding, len(stored))
	copy(result, stored)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// ListRunIDs retrieves the most recent limit run IDs, newest first.
func (s *FindingStore) ListRunIDs(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.seen))
	for runID := range s.seen {
		ids = append(ids, runID)
	}

	sort.Slice(ids, func(i, j int) bool {
		if s.seen[ids[i]] != s.seen[ids[j]] {
			return s.seen[ids[i]] > s.seen[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}

	return ids, nil
}
