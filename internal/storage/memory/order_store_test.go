package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

func TestOrderStore_InsertAndGet(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	o := &domain.Order{
		OrderID:  "ord1",
		UserID:   "user1",
		PairID:   "BTC-USDT",
		Type:     domain.OrderTypeLimit,
		Quantity: 1,
		Price:    50000,
	}

	if err := store.Insert(ctx, o); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "ord1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Price != 50000 {
		t.Errorf("Price mismatch: got %f, want 50000", got.Price)
	}
}

func TestOrderStore_NotFound(t *testing.T) {
	store := NewOrderStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestExecutionStore_GetRecent(t *testing.T) {
	store := NewExecutionStore()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		e := &domain.OrderExecution{
			OrderID:    fmt.Sprintf("ord%02d", i),
			Price:      100,
			Fees:       0.1,
			ExecutedAt: int64(1704067200000 + i*1000),
		}
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}

	if len(recent) != 10 {
		t.Fatalf("Expected 10 executions, got %d", len(recent))
	}
	if recent[0].OrderID != "ord14" {
		t.Errorf("Expected newest first, got %s", recent[0].OrderID)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].ExecutedAt > recent[i-1].ExecutedAt {
			t.Errorf("Executions not ordered DESC at index %d", i)
		}
	}
}

func TestExecutionStore_DuplicateKey(t *testing.T) {
	store := NewExecutionStore()
	ctx := context.Background()

	e := &domain.OrderExecution{OrderID: "ord1", Price: 100, Fees: 0.1}
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, e)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
