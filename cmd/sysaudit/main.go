// Package main runs one system-wide audit and prints the per-portfolio
// and per-trade verdicts plus the aggregated health summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"trading-audit-lab/internal/audit"
	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/fixtures"
	"trading-audit-lab/internal/pricefeed"
	"trading-audit-lab/internal/pricefeed/stub"
	"trading-audit-lab/internal/storage/memory"
	"trading-audit-lab/internal/storage/migrations"
	pgstore "trading-audit-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	priceWS := flag.String("price-ws", os.Getenv("PRICE_WS_ENDPOINTS"), "Comma-separated price WebSocket sources (name=url)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of database")
	recentTrades := flag.Int("recent-trades", audit.DefaultRecentTrades, "Trade executions to audit")
	flag.Parse()

	logger := log.New(os.Stdout, "[sysaudit] ", log.LstdFlags|log.Lshortfile)

	if !*useFixtures && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (or --use-fixtures)")
	}

	ctx := context.Background()

	stores, feed, cleanup, err := setup(ctx, *postgresDSN, *priceWS, *useFixtures)
	if err != nil {
		logger.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	runner := audit.NewSystemRunner(audit.SystemRunnerOptions{
		PortfolioAuditor: audit.NewPortfolioAuditor(audit.PortfolioAuditorOptions{
			Holdings:   stores.Holdings,
			Portfolios: stores.Portfolios,
			Feed:       feed,
			Logger:     logger,
		}),
		TradeAuditor: audit.NewTradeAuditor(audit.TradeAuditorOptions{
			Orders:     stores.Orders,
			Executions: stores.Executions,
			Pairs:      stores.Pairs,
			Feed:       feed,
			Logger:     logger,
		}),
		Holdings:     stores.Holdings,
		Executions:   stores.Executions,
		RecentTrades: *recentTrades,
		Logger:       logger,
	})

	start := time.Now()
	report, err := runner.Run(ctx)
	if err != nil {
		logger.Fatalf("System audit failed: %v", err)
	}

	printReport(report, time.Since(start))

	if report.Summary.OverallHealth == domain.HealthCritical {
		os.Exit(1)
	}
}

// printReport renders the audit as a plain text table.
func printReport(report *domain.SystemAuditReport, elapsed time.Duration) {
	fmt.Printf("System-wide audit completed in %v\n\n", elapsed.Round(time.Millisecond))

	fmt.Println("Portfolios:")
	fmt.Printf("  %-16s %-8s %s\n", "USER", "VERDICT", "HOLDINGS")
	for _, p := range report.PortfolioAudits {
		fmt.Printf("  %-16s %-8s %d\n", p.UserID, p.Overall, p.HoldingsCount)
	}

	fmt.Println("\nTrades:")
	fmt.Printf("  %-16s %-8s %-10s %s\n", "ORDER", "VERDICT", "PRICE", "FEES")
	for _, t := range report.TradeAudits {
		fmt.Printf("  %-16s %-8s %-10s %s\n", t.OrderID, t.Overall, t.ExecutionPrice.Verdict, t.Fees.Verdict)
	}

	s := report.Summary
	fmt.Printf("\nSummary: %d/%d portfolios failed, %d/%d trades failed\n",
		s.FailedPortfolios, s.TotalPortfolios, s.FailedTrades, s.TotalTrades)
	fmt.Printf("Overall health: %s\n", s.OverallHealth)
}

// setup wires the stores and price feed for one run.
func setup(ctx context.Context, postgresDSN, priceWS string, useFixtures bool) (fixtures.Stores, pricefeed.Feed, func(), error) {
	if useFixtures {
		stores := fixtures.Stores{
			Holdings:   memory.NewHoldingStore(),
			Portfolios: memory.NewPortfolioStore(),
			Orders:     memory.NewOrderStore(),
			Executions: memory.NewExecutionStore(),
			Pairs:      memory.NewTradingPairStore(),
			Bots:       memory.NewBotStore(),
		}
		if err := fixtures.LoadAll(ctx, stores); err != nil {
			return fixtures.Stores{}, nil, nil, fmt.Errorf("load fixtures: %w", err)
		}
		return stores, stub.NewStubFeed("primary", fixtures.Prices()), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fixtures.Stores{}, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return fixtures.Stores{}, nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	stores := fixtures.Stores{
		Holdings:   pgstore.NewHoldingStore(pool),
		Portfolios: pgstore.NewPortfolioStore(pool),
		Orders:     pgstore.NewOrderStore(pool),
		Executions: pgstore.NewExecutionStore(pool),
		Pairs:      pgstore.NewTradingPairStore(pool),
		Bots:       pgstore.NewBotStore(pool),
	}

	feed, closeFeed, err := connectFeed(ctx, priceWS)
	if err != nil {
		pool.Close()
		return fixtures.Stores{}, nil, nil, err
	}

	cleanup := func() {
		closeFeed()
		pool.Close()
	}
	return stores, feed, cleanup, nil
}

// connectFeed connects the first configured WebSocket price source.
// The system-wide audit needs a single reference feed.
func connectFeed(ctx context.Context, priceWS string) (pricefeed.Feed, func(), error) {
	for _, entry := range strings.Split(priceWS, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, endpoint, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --price-ws entry %q, want name=url", entry)
		}
		feed, err := pricefeed.NewWSFeed(ctx, strings.TrimSpace(name), strings.TrimSpace(endpoint), nil)
		if err != nil {
			return nil, nil, fmt.Errorf("connect price feed %s: %w", name, err)
		}
		return feed, func() { feed.Close() }, nil
	}
	return nil, nil, fmt.Errorf("at least one --price-ws entry is required")
}
