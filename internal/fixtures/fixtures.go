// Package fixtures populates stores with demo data for one-shot audit
// runs and local development.
package fixtures

import (
	"context"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/storage"
)

// Stores bundles everything LoadAll populates.
type Stores struct {
	Holdings   storage.HoldingStore
	Portfolios storage.PortfolioStore
	Orders     storage.OrderStore
	Executions storage.ExecutionStore
	Pairs      storage.TradingPairStore
	Bots       storage.BotStore
}

// LoadAll populates the stores with a small consistent demo dataset:
// two users whose stored aggregates match their holdings, a handful of
// executed orders, five active pairs and two bots.
func LoadAll(ctx context.Context, s Stores) error {
	if err := loadPairs(ctx, s.Pairs); err != nil {
		return err
	}
	if err := loadHoldings(ctx, s.Holdings); err != nil {
		return err
	}
	if err := loadPortfolios(ctx, s.Portfolios); err != nil {
		return err
	}
	if err := loadOrders(ctx, s.Orders, s.Executions); err != nil {
		return err
	}
	return loadBots(ctx, s.Bots)
}

// Prices returns the demo price table for stub feeds, keyed both by
// asset (holdings) and by pair ID (order and diagnostics checks).
func Prices() map[string]float64 {
	return map[string]float64{
		"BTC": 64250.0,
		"ETH": 3150.0,
		"SOL": 148.5,

		"BTC-USDT": 64250.0,
		"ETH-USDT": 3150.0,
		"SOL-USDT": 148.5,
		"BNB-USDT": 590.0,
		"XRP-USDT": 0.52,
	}
}

func loadPairs(ctx context.Context, store storage.TradingPairStore) error {
	pairs := []*domain.TradingPair{
		{PairID: "BTC-USDT", Base: "BTC", Quote: "USDT", Active: true},
		{PairID: "ETH-USDT", Base: "ETH", Quote: "USDT", Active: true},
		{PairID: "SOL-USDT", Base: "SOL", Quote: "USDT", Active: true},
		{PairID: "BNB-USDT", Base: "BNB", Quote: "USDT", Active: true},
		{PairID: "XRP-USDT", Base: "XRP", Quote: "USDT", Active: true},
	}
	for _, p := range pairs {
		if err := store.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func loadHoldings(ctx context.Context, store storage.HoldingStore) error {
	holdings := []*domain.Holding{
		{
			UserID:        "alice",
			Asset:         "BTC",
			Quantity:      0.5,
			AverageCost:   60000.0,
			CurrentValue:  32125.0,
			InvestedTotal: 30000.0,
			UnrealizedPnL: 2125.0,
			RealizedPnL:   150.0,
		},
		{
			UserID:        "alice",
			Asset:         "ETH",
			Quantity:      4.0,
			AverageCost:   3000.0,
			CurrentValue:  12600.0,
			InvestedTotal: 12000.0,
			UnrealizedPnL: 600.0,
			RealizedPnL:   0,
		},
		{
			UserID:        "bob",
			Asset:         "SOL",
			Quantity:      100.0,
			AverageCost:   140.0,
			CurrentValue:  14850.0,
			InvestedTotal: 14000.0,
			UnrealizedPnL: 850.0,
			RealizedPnL:   -25.0,
		},
	}
	for _, h := range holdings {
		if err := store.Insert(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func loadPortfolios(ctx context.Context, store storage.PortfolioStore) error {
	// Aggregates match the holdings at the demo prices, so portfolio
	// audits pass out of the box.
	summaries := []*domain.PortfolioSummary{
		{
			UserID:        "alice",
			TotalValue:    44725.0,
			TotalInvested: 42000.0,
			UnrealizedPnL: 2725.0,
			RealizedPnL:   150.0,
			TotalPnL:      2875.0,
			UpdatedAt:     1717243200000, // 2024-06-01 12:00:00 UTC
		},
		{
			UserID:        "bob",
			TotalValue:    14850.0,
			TotalInvested: 14000.0,
			UnrealizedPnL: 850.0,
			RealizedPnL:   -25.0,
			TotalPnL:      825.0,
			UpdatedAt:     1717243200000,
		},
	}
	for _, s := range summaries {
		if err := store.Upsert(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func loadOrders(ctx context.Context, orders storage.OrderStore, executions storage.ExecutionStore) error {
	type pair struct {
		order *domain.Order
		exec  *domain.OrderExecution
	}
	rows := []pair{
		{
			order: &domain.Order{
				OrderID:  "ord-1001",
				UserID:   "alice",
				PairID:   "BTC-USDT",
				Type:     domain.OrderTypeMarket,
				Quantity: 0.1,
				PlacedAt: 1717243200000,
			},
			exec: &domain.OrderExecution{
				OrderID:    "ord-1001",
				Price:      64250.0,
				Fees:       6.425, // 0.1 * 64250 * 0.001
				ExecutedAt: 1717243205000,
			},
		},
		{
			order: &domain.Order{
				OrderID:  "ord-1002",
				UserID:   "bob",
				PairID:   "SOL-USDT",
				Type:     domain.OrderTypeLimit,
				Quantity: 10.0,
				Price:    148.0,
				PlacedAt: 1717246800000,
			},
			exec: &domain.OrderExecution{
				OrderID:    "ord-1002",
				Price:      148.0,
				Fees:       1.48,
				ExecutedAt: 1717246860000,
			},
		},
		{
			order: &domain.Order{
				OrderID:  "ord-1003",
				UserID:   "alice",
				PairID:   "ETH-USDT",
				Type:     domain.OrderTypeMarket,
				Quantity: 1.0,
				PlacedAt: 1717250400000,
			},
			exec: &domain.OrderExecution{
				OrderID:    "ord-1003",
				Price:      3150.0,
				Fees:       3.15,
				ExecutedAt: 1717250405000,
			},
		},
	}
	for _, row := range rows {
		if err := orders.Insert(ctx, row.order); err != nil {
			return err
		}
		if err := executions.Insert(ctx, row.exec); err != nil {
			return err
		}
	}
	return nil
}

func loadBots(ctx context.Context, store storage.BotStore) error {
	bots := []*domain.Bot{
		{BotID: "bot-grid-1", UserID: "alice", Strategy: "grid", Active: true},
		{BotID: "bot-dca-1", UserID: "bob", Strategy: "dca", Active: true},
	}
	for _, b := range bots {
		if err := store.Insert(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
