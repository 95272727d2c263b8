// Package main runs one comprehensive audit and writes the report
// files (Markdown, CSV, JSON) plus a GO/NO-GO summary to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"trading-audit-lab/internal/decision"
	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/engine"
	"trading-audit-lab/internal/fixtures"
	"trading-audit-lab/internal/pricefeed"
	"trading-audit-lab/internal/pricefeed/stub"
	"trading-audit-lab/internal/reporting"
	"trading-audit-lab/internal/storage"
	chstore "trading-audit-lab/internal/storage/clickhouse"
	"trading-audit-lab/internal/storage/memory"
	"trading-audit-lab/internal/storage/migrations"
	pgstore "trading-audit-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	priceWS := flag.String("price-ws", os.Getenv("PRICE_WS_ENDPOINTS"), "Comma-separated price WebSocket sources (name=url)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of database")
	outputDir := flag.String("output-dir", "output", "Output directory for report files")
	seed := flag.Int64("seed", 0, "Seed for the simulated trading session (0 = time-based)")
	flag.Parse()

	logger := log.New(os.Stdout, "[audit] ", log.LstdFlags|log.Lshortfile)

	if !*useFixtures && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (or --use-fixtures)")
	}

	ctx := context.Background()

	holdings, pairs, bots, findings, auditLog, feeds, books, cleanup, err := setup(ctx, *postgresDSN, *clickhouseDSN, *priceWS, *useFixtures)
	if err != nil {
		logger.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	var generator engine.ScenarioGenerator
	if *seed != 0 {
		generator = engine.NewRandomGenerator(*seed)
	}

	eng := engine.New(engine.Options{
		Holdings:  holdings,
		Pairs:     pairs,
		Bots:      bots,
		Feeds:     feeds,
		Books:     books,
		Findings:  findings,
		AuditLog:  auditLog,
		Generator: generator,
		Logger:    logger,
	})

	start := time.Now()
	run, err := eng.RunFullAudit(ctx)
	if err != nil {
		logger.Printf("Audit failed after %d findings: %v", len(run.Findings), err)
		os.Exit(1)
	}

	report := reporting.NewGenerator().Generate(run.RunID, run.Findings, run.Session)
	if err := reporting.WriteFiles(*outputDir, report); err != nil {
		logger.Fatalf("Failed to write report files: %v", err)
	}

	fmt.Printf("Audit %s completed in %v\n", run.RunID, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Findings: %d total (%d PASS, %d WARNING, %d FAIL, %d CRITICAL)\n",
		len(run.Findings),
		run.CountByStatus(domain.StatusPass),
		run.CountByStatus(domain.StatusWarning),
		run.CountByStatus(domain.StatusFail),
		run.CountByStatus(domain.StatusCritical))
	fmt.Printf("Mean score: %.1f\n", decision.MeanScore(run.Findings))
	fmt.Printf("Recommendation: %s\n", report.Assessment.FinalRecommendation)
	fmt.Println("Reports written:")
	fmt.Printf("  - %s/%s\n", *outputDir, reporting.MarkdownFileName)
	fmt.Printf("  - %s/%s\n", *outputDir, reporting.CSVFileName)
	fmt.Printf("  - %s/%s\n", *outputDir, reporting.JSONFileName)
}

// setup wires stores and price sources for one run. With fixtures it
// builds everything in memory; otherwise it connects to PostgreSQL and
// ClickHouse and applies migrations.
func setup(ctx context.Context, postgresDSN, clickhouseDSN, priceWS string, useFixtures bool) (
	storage.HoldingStore,
	storage.TradingPairStore,
	storage.BotStore,
	storage.FindingStore,
	storage.AuditLogStore,
	[]pricefeed.Feed,
	[]pricefeed.BookSource,
	func(),
	error,
) {
	if useFixtures {
		holdings := memory.NewHoldingStore()
		portfolios := memory.NewPortfolioStore()
		orders := memory.NewOrderStore()
		executions := memory.NewExecutionStore()
		pairs := memory.NewTradingPairStore()
		bots := memory.NewBotStore()

		if err := fixtures.LoadAll(ctx, fixtures.Stores{
			Holdings:   holdings,
			Portfolios: portfolios,
			Orders:     orders,
			Executions: executions,
			Pairs:      pairs,
			Bots:       bots,
		}); err != nil {
			return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("load fixtures: %w", err)
		}

		primary := stub.NewStubFeed("primary", fixtures.Prices())
		backupPrices := fixtures.Prices()
		for symbol, price := range backupPrices {
			backupPrices[symbol] = price * 1.0005
		}
		backup := stub.NewStubFeed("backup", backupPrices)

		return holdings, pairs, bots, memory.NewFindingStore(), memory.NewAuditLogStore(),
			[]pricefeed.Feed{primary, backup},
			[]pricefeed.BookSource{primary, backup},
			func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouse(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
	}

	var (
		feeds   []pricefeed.Feed
		closers []*pricefeed.WSFeed
	)
	for _, entry := range strings.Split(priceWS, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, endpoint, ok := strings.Cut(entry, "=")
		if !ok {
			chConn.Close()
			pool.Close()
			return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("invalid --price-ws entry %q, want name=url", entry)
		}
		feed, err := pricefeed.NewWSFeed(ctx, strings.TrimSpace(name), strings.TrimSpace(endpoint), nil)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			chConn.Close()
			pool.Close()
			return nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("connect price feed %s: %w", name, err)
		}
		feeds = append(feeds, feed)
		closers = append(closers, feed)
	}

	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewHoldingStore(pool),
		pgstore.NewTradingPairStore(pool),
		pgstore.NewBotStore(pool),
		chstore.NewFindingStore(chConn),
		pgstore.NewAuditLogStore(pool),
		feeds, nil, cleanup, nil
}
