package memory

import (
	"context"
	"errors"
	"testing"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

func TestFindingStore_InsertAndGet(t *testing.T) {
	store := NewFindingStore()
	ctx := context.Background()

	findings := []domain.AuditFinding{
		{ID: "f2", Area: domain.AreaSecurity, Component: "Rate Limiting", Status: domain.StatusWarning, Score: 70, Timestamp: 2000},
		{ID: "f1", Area: domain.AreaInfrastructure, Component: "Storage", Status: domain.StatusPass, Score: 100, Timestamp: 1000},
	}

	if err := store.InsertBulk(ctx, "run1", findings); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(got))
	}
	if got[0].ID != "f1" {
		t.Errorf("Expected timestamp ASC order, got %s first", got[0].ID)
	}
}

func TestFindingStore_DuplicateWithinRun(t *testing.T) {
	store := NewFindingStore()
	ctx := context.Background()

	f := domain.AuditFinding{ID: "f1", Area: domain.AreaSecurity, Component: "c", Status: domain.StatusPass, Score: 100, Timestamp: 1}
	if err := store.InsertBulk(ctx, "run1", []domain.AuditFinding{f}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, "run1", []domain.AuditFinding{f})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestFindingStore_GetByRunID_NotFound(t *testing.T) {
	store := NewFindingStore()

	_, err := store.GetByRunID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindingStore_ListRunIDs(t *testing.T) {
	store := NewFindingStore()
	ctx := context.Background()

	runs := map[string]int64{"runA": 1000, "runB": 3000, "runC": 2000}
	for runID, ts := range runs {
		f := domain.AuditFinding{ID: runID + "-f", Area: domain.AreaSecurity, Component: "c", Status: domain.StatusPass, Score: 100, Timestamp: ts}
		if err := store.InsertBulk(ctx, runID, []domain.AuditFinding{f}); err != nil {
			t.Fatalf("InsertBulk failed: %v", err)
		}
	}

	ids, err := store.ListRunIDs(ctx, 2)
	if err != nil {
		t.Fatalf("ListRunIDs failed: %v", err)
	}

	if len(ids) != 2 || ids[0] != "runB" || ids[1] != "runC" {
		t.Errorf("Unexpected run IDs: %v", ids)
	}
}
