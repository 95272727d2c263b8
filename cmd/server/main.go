// Package main provides the unified audit service:
// - System-wide audits (scheduled): every portfolio plus recent trades
// - Comprehensive audits (scheduled): five-phase run, report files, GO/NO-GO
// - HTTP: /healthz, /status JSON, Prometheus /metrics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"trading-audit-lab/internal/audit"
	"trading-audit-lab/internal/decision"
	"trading-audit-lab/internal/engine"
	"trading-audit-lab/internal/fixtures"
	"trading-audit-lab/internal/observability"
	"trading-audit-lab/internal/pricefeed"
	"trading-audit-lab/internal/pricefeed/stub"
	"trading-audit-lab/internal/reporting"
	"trading-audit-lab/internal/storage"
	chstore "trading-audit-lab/internal/storage/clickhouse"
	"trading-audit-lab/internal/storage/memory"
	"trading-audit-lab/internal/storage/migrations"
	pgstore "trading-audit-lab/internal/storage/postgres"
)

// Server holds all components of the unified audit service.
type Server struct {
	// Configuration
	postgresDSN       string
	clickhouseDSN     string
	useMemory         bool
	outputDir         string
	sysAuditInterval  time.Duration
	fullAuditInterval time.Duration
	recentTrades      int

	// Stores and price sources
	stores *allStores
	feeds  []pricefeed.Feed
	books  []pricefeed.BookSource

	logger *log.Logger

	// State
	mu                 sync.Mutex
	started            time.Time
	lastSysAuditRun    time.Time
	lastFullAuditRun   time.Time
	sysAuditRunning    bool
	fullAuditRunning   bool
	lastHealth         string
	lastRecommendation string

	// Stats
	sysAuditRuns  int
	fullAuditRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	holdingStore   storage.HoldingStore
	portfolioStore storage.PortfolioStore
	orderStore     storage.OrderStore
	executionStore storage.ExecutionStore
	pairStore      storage.TradingPairStore
	botStore       storage.BotStore
	findingStore   storage.FindingStore
	auditLogStore  storage.AuditLogStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	priceWS := flag.String("price-ws", os.Getenv("PRICE_WS_ENDPOINTS"), "Comma-separated price WebSocket sources (name=url)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	useFixtures := flag.Bool("use-fixtures", false, "Load the demo dataset on startup (requires --use-memory)")
	outputDir := flag.String("output-dir", "output", "Output directory for audit reports")
	sysAuditInterval := flag.Duration("sysaudit-interval", 15*time.Minute, "System-wide audit interval")
	fullAuditInterval := flag.Duration("full-audit-interval", 6*time.Hour, "Comprehensive audit interval")
	recentTrades := flag.Int("recent-trades", audit.DefaultRecentTrades, "Trade executions audited per system-wide run")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *useFixtures && !*useMemory {
		logger.Fatal("--use-fixtures requires --use-memory")
	}
	if *priceWS == "" && !*useFixtures {
		logger.Fatal("--price-ws is required (or --use-fixtures for stub price sources)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if *useFixtures {
		if err := fixtures.LoadAll(ctx, fixtures.Stores{
			Holdings:   stores.holdingStore,
			Portfolios: stores.portfolioStore,
			Orders:     stores.orderStore,
			Executions: stores.executionStore,
			Pairs:      stores.pairStore,
			Bots:       stores.botStore,
		}); err != nil {
			logger.Fatalf("Failed to load fixtures: %v", err)
		}
		logger.Println("Loaded demo fixtures")
	}

	// Create price sources
	feeds, books, closeFeeds, err := createFeeds(ctx, *priceWS, *useFixtures)
	if err != nil {
		logger.Fatalf("Failed to create price sources: %v", err)
	}
	defer closeFeeds()
	logger.Printf("Price sources: %d feeds, %d order book sources", len(feeds), len(books))

	// Create server
	server := &Server{
		postgresDSN:       *postgresDSN,
		clickhouseDSN:     *clickhouseDSN,
		useMemory:         *useMemory,
		outputDir:         *outputDir,
		sysAuditInterval:  *sysAuditInterval,
		fullAuditInterval: *fullAuditInterval,
		recentTrades:      *recentTrades,
		stores:            stores,
		feeds:             feeds,
		books:             books,
		logger:            logger,
		started:           time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	// Run the schedulers
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, applying migrations for
// the database-backed path.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			holdingStore:   memory.NewHoldingStore(),
			portfolioStore: memory.NewPortfolioStore(),
			orderStore:     memory.NewOrderStore(),
			executionStore: memory.NewExecutionStore(),
			pairStore:      memory.NewTradingPairStore(),
			botStore:       memory.NewBotStore(),
			findingStore:   memory.NewFindingStore(),
			auditLogStore:  memory.NewAuditLogStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouse(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (operational data)
		holdingStore:   pgstore.NewHoldingStore(pool),
		portfolioStore: pgstore.NewPortfolioStore(pool),
		orderStore:     pgstore.NewOrderStore(pool),
		executionStore: pgstore.NewExecutionStore(pool),
		pairStore:      pgstore.NewTradingPairStore(pool),
		botStore:       pgstore.NewBotStore(pool),
		auditLogStore:  pgstore.NewAuditLogStore(pool),

		// ClickHouse store (finding archive)
		findingStore: chstore.NewFindingStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// createFeeds builds the price sources from the --price-ws entries.
// With no entries and fixtures enabled, two stub feeds over the demo
// prices stand in, the backup nudged a few basis points off the primary.
func createFeeds(ctx context.Context, priceWS string, useFixtures bool) ([]pricefeed.Feed, []pricefeed.BookSource, func(), error) {
	var (
		feeds   []pricefeed.Feed
		books   []pricefeed.BookSource
		closers []*pricefeed.WSFeed
	)

	for _, entry := range strings.Split(priceWS, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, endpoint, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, nil, nil, fmt.Errorf("invalid --price-ws entry %q, want name=url", entry)
		}
		feed, err := pricefeed.NewWSFeed(ctx, strings.TrimSpace(name), strings.TrimSpace(endpoint), nil)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, nil, fmt.Errorf("connect price feed %s: %w", name, err)
		}
		feeds = append(feeds, feed)
		closers = append(closers, feed)
	}

	if len(feeds) == 0 && useFixtures {
		primary := stub.NewStubFeed("primary", fixtures.Prices())
		backupPrices := fixtures.Prices()
		for symbol, price := range backupPrices {
			backupPrices[symbol] = price * 1.0005
		}
		backup := stub.NewStubFeed("backup", backupPrices)
		feeds = append(feeds, primary, backup)
		books = append(books, primary, backup)
	}

	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	return feeds, books, closeAll, nil
}

// Run starts both audit schedulers and blocks until ctx is cancelled
// or a scheduler fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting audit service...")

	errCh := make(chan error, 2)

	go func() {
		err := s.runSysAuditScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("system audit scheduler: %w", err)
		}
	}()

	go func() {
		err := s.runFullAuditScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("full audit scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runSysAuditScheduler runs system-wide audits on schedule.
func (s *Server) runSysAuditScheduler(ctx context.Context) error {
	s.logger.Printf("Starting system audit scheduler (interval: %v)...", s.sysAuditInterval)

	// Run immediately on start
	s.runSysAudit(ctx)

	ticker := time.NewTicker(s.sysAuditInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSysAudit(ctx)
		}
	}
}

// runSysAudit executes one system-wide audit.
func (s *Server) runSysAudit(ctx context.Context) {
	s.mu.Lock()
	if s.sysAuditRunning {
		s.mu.Unlock()
		s.logger.Println("System audit already running, skipping...")
		return
	}
	s.sysAuditRunning = true
	s.mu.Unlock()

	health := ""
	defer func() {
		s.mu.Lock()
		s.sysAuditRunning = false
		s.lastSysAuditRun = time.Now()
		s.sysAuditRuns++
		if health != "" {
			s.lastHealth = health
		}
		s.mu.Unlock()
	}()

	s.logger.Println("Running system-wide audit...")
	start := time.Now()

	runner := audit.NewSystemRunner(audit.SystemRunnerOptions{
		PortfolioAuditor: audit.NewPortfolioAuditor(audit.PortfolioAuditorOptions{
			Holdings:   s.stores.holdingStore,
			Portfolios: s.stores.portfolioStore,
			Feed:       s.primaryFeed(),
			Logger:     s.logger,
		}),
		TradeAuditor: audit.NewTradeAuditor(audit.TradeAuditorOptions{
			Orders:     s.stores.orderStore,
			Executions: s.stores.executionStore,
			Pairs:      s.stores.pairStore,
			Feed:       s.primaryFeed(),
			Logger:     s.logger,
		}),
		Holdings:     s.stores.holdingStore,
		Executions:   s.stores.executionStore,
		AuditLog:     s.stores.auditLogStore,
		RecentTrades: s.recentTrades,
		Logger:       s.logger,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		s.logger.Printf("System audit error: %v", err)
		return
	}

	for _, p := range report.PortfolioAudits {
		observability.RecordPortfolioAudit(string(p.Overall))
	}
	for _, t := range report.TradeAudits {
		observability.RecordTradeAudit(string(t.Overall))
	}
	health = string(report.Summary.OverallHealth)
	observability.RecordSystemAudit(health, time.Since(start).Seconds(), report.FinishedAt)

	s.logger.Printf("System audit completed in %v: %d/%d portfolios failed, %d/%d trades failed, health %s",
		time.Since(start),
		report.Summary.FailedPortfolios, report.Summary.TotalPortfolios,
		report.Summary.FailedTrades, report.Summary.TotalTrades,
		health)
}

// runFullAuditScheduler runs comprehensive audits on schedule.
func (s *Server) runFullAuditScheduler(ctx context.Context) error {
	s.logger.Printf("Starting full audit scheduler (interval: %v)...", s.fullAuditInterval)

	// Run immediately on start
	s.runFullAudit(ctx)

	ticker := time.NewTicker(s.fullAuditInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runFullAudit(ctx)
		}
	}
}

// runFullAudit executes one comprehensive audit and writes report files.
// At most one comprehensive audit is in flight at a time.
func (s *Server) runFullAudit(ctx context.Context) {
	s.mu.Lock()
	if s.fullAuditRunning {
		s.mu.Unlock()
		s.logger.Println("Full audit already running, skipping...")
		return
	}
	s.fullAuditRunning = true
	s.mu.Unlock()

	recommendation := ""
	defer func() {
		s.mu.Lock()
		s.fullAuditRunning = false
		s.lastFullAuditRun = time.Now()
		s.fullAuditRuns++
		if recommendation != "" {
			s.lastRecommendation = recommendation
		}
		s.mu.Unlock()
	}()

	s.logger.Println("Running comprehensive audit...")
	start := time.Now()

	eng := engine.New(engine.Options{
		Holdings: s.stores.holdingStore,
		Pairs:    s.stores.pairStore,
		Bots:     s.stores.botStore,
		Feeds:    s.feeds,
		Books:    s.books,
		Findings: s.stores.findingStore,
		AuditLog: s.stores.auditLogStore,
		Logger:   s.logger,
	})

	run, err := eng.RunFullAudit(ctx)
	if err != nil {
		s.logger.Printf("Full audit error: %v", err)
		observability.RecordFullAudit("error", time.Since(start).Seconds(), 0)
		return
	}

	for _, f := range run.Findings {
		observability.RecordFinding(string(f.Area), string(f.Status))
	}
	observability.RecordFullAudit("ok", time.Since(start).Seconds(), run.FinishedAt)

	report := reporting.NewGenerator().Generate(run.RunID, run.Findings, run.Session)
	recommendation = string(report.Assessment.FinalRecommendation)
	observability.RecordAssessment(decision.MeanScore(run.Findings), report.Assessment.ReadyForRealMoney)

	if err := reporting.WriteFiles(s.outputDir, report); err != nil {
		s.logger.Printf("Failed to write report files: %v", err)
		return
	}

	s.logger.Printf("Full audit %s completed in %v: %d findings, recommendation %s, reports in %s/",
		run.RunID, time.Since(start), len(run.Findings), recommendation, s.outputDir)
}

// primaryFeed returns the first configured feed, nil when none exist.
func (s *Server) primaryFeed() pricefeed.Feed {
	if len(s.feeds) == 0 {
		return nil
	}
	return s.feeds[0]
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	LastSystemAudit    time.Time `json:"last_system_audit,omitempty"`
	LastFullAudit      time.Time `json:"last_full_audit,omitempty"`
	SystemAuditRuns    int       `json:"system_audit_runs"`
	FullAuditRuns      int       `json:"full_audit_runs"`
	SystemAuditRunning bool      `json:"system_audit_running"`
	FullAuditRunning   bool      `json:"full_audit_running"`
	LastHealth         string    `json:"last_health,omitempty"`
	LastRecommendation string    `json:"last_recommendation,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:             "running",
		Uptime:             time.Since(s.started).String(),
		LastSystemAudit:    s.lastSysAuditRun,
		LastFullAudit:      s.lastFullAuditRun,
		SystemAuditRuns:    s.sysAuditRuns,
		FullAuditRuns:      s.fullAuditRuns,
		SystemAuditRunning: s.sysAuditRunning,
		FullAuditRunning:   s.fullAuditRunning,
		LastHealth:         s.lastHealth,
		LastRecommendation: s.lastRecommendation,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
