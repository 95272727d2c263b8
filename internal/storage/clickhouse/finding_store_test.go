package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

func TestFindingStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	findings := []domain.AuditFinding{
		{
			ID:              "f1",
			Area:            domain.AreaInfrastructure,
			Component:       "Storage Connectivity",
			Status:          domain.StatusPass,
			Score:           100,
			Notes:           []string{"all stores reachable"},
			Recommendations: nil,
			Timestamp:       1704067200000,
		},
		{
			ID:              "f2",
			Area:            domain.AreaSecurity,
			Component:       "Rate Limiting",
			Status:          domain.StatusWarning,
			Score:           70,
			Notes:           []string{"no per-user limits"},
			Recommendations: []string{"add per-user rate limiting"},
			Timestamp:       1704067201000,
		},
	}

	require.NoError(t, store.InsertBulk(ctx, "run1", findings))

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "f1", got[0].ID)
	require.Equal(t, domain.StatusWarning, got[1].Status)
	require.Equal(t, []string{"add per-user rate limiting"}, got[1].Recommendations)
}

func TestFindingStore_DuplicateWithinRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	f := domain.AuditFinding{ID: "f1", Area: domain.AreaSecurity, Component: "c", Status: domain.StatusPass, Score: 100, Timestamp: 1}
	require.NoError(t, store.InsertBulk(ctx, "run1", []domain.AuditFinding{f}))

	err := store.InsertBulk(ctx, "run1", []domain.AuditFinding{f})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestFindingStore_ListRunIDs(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	runs := []struct {
		runID string
		ts    int64
	}{
		{"runA", 1000},
		{"runB", 3000},
		{"runC", 2000},
	}
	for _, r := range runs {
		f := domain.AuditFinding{ID: r.runID + "-f", Area: domain.AreaSecurity, Component: "c", Status: domain.StatusPass, Score: 100, Timestamp: r.ts}
		require.NoError(t, store.InsertBulk(ctx, r.runID, []domain.AuditFinding{f}))
	}

	ids, err := store.ListRunIDs(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"runB", "runC"}, ids)
}
