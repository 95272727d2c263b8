package fixtures

import (
	"context"
	"testing"

	"trading-audit-lab/internal/audit"
	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/pricefeed/stub"
	"trading-audit-lab/internal/storage/memory"
)

func loadedStores(t *testing.T) (Stores, *memory.HoldingStore, *memory.PortfolioStore, *memory.OrderStore, *memory.ExecutionStore, *memory.TradingPairStore, *memory.BotStore) {
	t.Helper()
	holdings := memory.NewHoldingStore()
	portfolios := memory.NewPortfolioStore()
	orders := memory.NewOrderStore()
	executions := memory.NewExecutionStore()
	pairs := memory.NewTradingPairStore()
	bots := memory.NewBotStore()

	s := Stores{
		Holdings:   holdings,
		Portfolios: portfolios,
		Orders:     orders,
		Executions: executions,
		Pairs:      pairs,
		Bots:       bots,
	}
	if err := LoadAll(context.Background(), s); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return s, holdings, portfolios, orders, executions, pairs, bots
}

func TestLoadAll_Counts(t *testing.T) {
	ctx := context.Background()
	_, holdings, _, _, executions, pairs, bots := loadedStores(t)

	users, err := holdings.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}

	activePairs, err := pairs.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(activePairs) != 5 {
		t.Errorf("Expected 5 active pairs, got %d", len(activePairs))
	}

	activeBots, err := bots.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive bots: %v", err)
	}
	if len(activeBots) != 2 {
		t.Errorf("Expected 2 bots, got %d", len(activeBots))
	}

	recent, err := executions.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 executions, got %d", len(recent))
	}
}

// The demo data must be internally consistent: every portfolio and
// every trade audits clean at the demo prices.
func TestLoadAll_AuditsPass(t *testing.T) {
	ctx := context.Background()
	_, holdings, portfolios, orders, executions, pairs, _ := loadedStores(t)

	feed := stub.NewStubFeed("fixture", Prices())

	portfolioAuditor := audit.NewPortfolioAuditor(audit.PortfolioAuditorOptions{
		Holdings:   holdings,
		Portfolios: portfolios,
		Feed:       feed,
	})
	for _, userID := range []string{"alice", "bob"} {
		record, err := portfolioAuditor.AuditPortfolio(ctx, userID)
		if err != nil {
			t.Fatalf("AuditPortfolio %s: %v", userID, err)
		}
		if record.Overall != domain.VerdictPass {
			t.Errorf("Expected PASS for %s, got %v: %+v", userID, record.Overall, record.Results)
		}
	}

	tradeAuditor := audit.NewTradeAuditor(audit.TradeAuditorOptions{
		Orders:     orders,
		Executions: executions,
		Pairs:      pairs,
		Feed:       feed,
	})
	for _, orderID := range []string{"ord-1001", "ord-1002", "ord-1003"} {
		record, err := tradeAuditor.AuditTrade(ctx, orderID)
		if err != nil {
			t.Fatalf("AuditTrade %s: %v", orderID, err)
		}
		if record.Overall != domain.VerdictPass {
			t.Errorf("Expected PASS for %s, got %v", orderID, record.Overall)
		}
	}
}

func TestLoadAll_Idempotence(t *testing.T) {
	s, _, _, _, _, _, _ := loadedStores(t)

	// Loading twice hits duplicate keys; callers load into fresh stores
	if err := LoadAll(context.Background(), s); err == nil {
		t.Error("Expected duplicate key error on second load")
	}
}
