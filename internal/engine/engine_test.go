package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/pricefeed"
	"trading-audit-lab/internal/pricefeed/stub"
	"trading-audit-lab/internal/storage/memory"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func fixedNow() time.Time {
	return time.UnixMilli(1700000000000)
}

type engineFixture struct {
	engine   *Engine
	holdings *memory.HoldingStore
	pairs    *memory.TradingPairStore
	bots     *memory.BotStore
	findings *memory.FindingStore
	auditLog *memory.AuditLogStore
	primary  *stub.StubFeed
	backup   *stub.StubFeed
}

// newEngineFixture wires an engine over memory stores and two stub
// feeds, configured so every check passes unless a test skews it.
func newEngineFixture(t *testing.T, generator ScenarioGenerator) *engineFixture {
	t.Helper()
	ctx := context.Background()

	f := &engineFixture{
		holdings: memory.NewHoldingStore(),
		pairs:    memory.NewTradingPairStore(),
		bots:     memory.NewBotStore(),
		findings: memory.NewFindingStore(),
		auditLog: memory.NewAuditLogStore(),
	}

	for i := 0; i < MinActivePairs; i++ {
		pairID := fmt.Sprintf("PAIR-%d", i)
		if err := f.pairs.Insert(ctx, &domain.TradingPair{PairID: pairID, Base: "A", Quote: "B", Active: true}); err != nil {
			t.Fatalf("insert pair: %v", err)
		}
	}
	if err := f.bots.Insert(ctx, &domain.Bot{BotID: "bot-1", UserID: "user-1", Strategy: "grid", Active: true}); err != nil {
		t.Fatalf("insert bot: %v", err)
	}

	prices := map[string]float64{"PAIR-0": 100.0}
	f.primary = stub.NewStubFeed("primary", prices)
	f.backup = stub.NewStubFeed("backup", map[string]float64{"PAIR-0": 100.5})

	f.engine = New(Options{
		Holdings:  f.holdings,
		Pairs:     f.pairs,
		Bots:      f.bots,
		Feeds:     []pricefeed.Feed{f.primary, f.backup},
		Books:     []pricefeed.BookSource{f.primary},
		Findings:  f.findings,
		AuditLog:  f.auditLog,
		Generator: generator,
		Logger:    testLogger(),
		Now:       fixedNow,
	})
	return f
}

func allWins(n int) []bool {
	wins := make([]bool, n)
	for i := range wins {
		wins[i] = true
	}
	return wins
}

func findByComponent(t *testing.T, run *Run, component string) domain.AuditFinding {
	t.Helper()
	for _, f := range run.Findings {
		if f.Component == component {
			return f
		}
	}
	t.Fatalf("no finding for component %q", component)
	return domain.AuditFinding{}
}

func TestEngine_FullAuditAllPhases(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	if run.RunID == "" {
		t.Error("Expected non-empty run ID")
	}

	// Every area contributes findings
	seen := make(map[domain.AuditArea]int)
	for _, finding := range run.Findings {
		seen[finding.Area]++
		if finding.ID == "" {
			t.Errorf("Finding %s has empty ID", finding.Component)
		}
		if finding.Score < 0 || finding.Score > 100 {
			t.Errorf("Finding %s score out of range: %v", finding.Component, finding.Score)
		}
	}
	for _, area := range domain.AuditAreas {
		if seen[area] == 0 {
			t.Errorf("Expected findings for area %s", area)
		}
	}

	if run.CountByStatus(domain.StatusCritical) != 0 {
		t.Errorf("Expected no CRITICAL findings, got %d", run.CountByStatus(domain.StatusCritical))
	}
}

func TestEngine_DiagnosticsScores(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	storage := findByComponent(t, run, "Storage Connectivity")
	if storage.Status != domain.StatusPass || storage.Score != 100 {
		t.Errorf("Expected storage PASS/100, got %v/%v", storage.Status, storage.Score)
	}

	sources := findByComponent(t, run, "Price Sources")
	if sources.Score != 100 {
		t.Errorf("Expected 2/2 sources score 100, got %v", sources.Score)
	}

	pairs := findByComponent(t, run, "Trading Pairs")
	if pairs.Status != domain.StatusPass || pairs.Score != 100 {
		t.Errorf("Expected pairs PASS/100, got %v/%v", pairs.Status, pairs.Score)
	}

	book := findByComponent(t, run, "Order Book Data")
	if book.Status != domain.StatusPass {
		t.Errorf("Expected order book PASS, got %v", book.Status)
	}
}

func TestEngine_PartialPriceSources(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))
	f.backup.SetFailed(true)

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	sources := findByComponent(t, run, "Price Sources")
	if sources.Score != 50 {
		t.Errorf("Expected 1/2 sources score 50, got %v", sources.Score)
	}
	if sources.Status != domain.StatusFail {
		t.Errorf("Expected FAIL at 50, got %v", sources.Status)
	}

	// Cross-source accuracy degrades to CRITICAL with a dead source
	accuracy := findByComponent(t, run, "Price Feed Accuracy")
	if accuracy.Status != domain.StatusCritical {
		t.Errorf("Expected CRITICAL accuracy, got %v", accuracy.Status)
	}
}

func TestEngine_CrossSourceDivergenceFails(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))
	// 10% apart, far beyond 2x the 1% tolerance
	f.backup.SetPrice("PAIR-0", 110.0)

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	accuracy := findByComponent(t, run, "Price Feed Accuracy")
	if accuracy.Status != domain.StatusFail {
		t.Errorf("Expected FAIL for diverged sources, got %v", accuracy.Status)
	}
}

func TestEngine_SimulatedSessionScoring(t *testing.T) {
	tests := []struct {
		name       string
		wins       []bool
		wantStatus domain.FindingStatus
		wantRate   float64
	}{
		{"AllWins", allWins(10), domain.StatusPass, 1.0},
		{"EightOfTen", append(allWins(8), false, false), domain.StatusPass, 0.8},
		{"SixOfTen", append(allWins(6), false, false, false, false), domain.StatusWarning, 0.6},
		{"HalfLost", append(allWins(5), false, false, false, false, false), domain.StatusFail, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newEngineFixture(t, NewFixedGenerator(tt.wins, nil))

			run, err := f.engine.RunFullAudit(ctx)
			if err != nil {
				t.Fatalf("RunFullAudit: %v", err)
			}

			if run.Session == nil {
				t.Fatal("Expected session stats on run")
			}
			if run.Session.SuccessRate != tt.wantRate {
				t.Errorf("Expected success rate %v, got %v", tt.wantRate, run.Session.SuccessRate)
			}

			session := findByComponent(t, run, "Session Success Rate")
			if session.Status != tt.wantStatus {
				t.Errorf("Expected %v, got %v", tt.wantStatus, session.Status)
			}
			if session.Score != tt.wantRate*100 {
				t.Errorf("Expected score %v, got %v", tt.wantRate*100, session.Score)
			}
		})
	}
}

func TestEngine_ExecutionSpeedAgainstMemoryStores(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	speed := findByComponent(t, run, "Execution Speed")
	if speed.Status != domain.StatusPass {
		t.Errorf("Expected PASS against memory stores, got %v", speed.Status)
	}
}

func TestEngine_ArchivesAndLogsRun(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	run, err := f.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	archived, err := f.findings.GetByRunID(ctx, run.RunID)
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(archived) != len(run.Findings) {
		t.Errorf("Expected %d archived findings, got %d", len(run.Findings), len(archived))
	}

	entries, err := f.auditLog.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit log entry, got %d", len(entries))
	}
	if entries[0].Kind != domain.AuditLogFull {
		t.Errorf("Expected kind %s, got %s", domain.AuditLogFull, entries[0].Kind)
	}
	if entries[0].RefID != run.RunID {
		t.Errorf("Expected ref %s, got %s", run.RunID, entries[0].RefID)
	}
}

// failingPairStore errors on ListActive to exercise phase aborts.
type failingPairStore struct {
	*memory.TradingPairStore
}

var errStoreDown = errors.New("store down")

func (s *failingPairStore) ListActive(_ context.Context) ([]*domain.TradingPair, error) {
	return nil, errStoreDown
}

func TestEngine_PhaseErrorAbortsRemaining(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	broken := New(Options{
		Holdings:  f.holdings,
		Pairs:     &failingPairStore{f.pairs},
		Bots:      f.bots,
		Feeds:     []pricefeed.Feed{f.primary, f.backup},
		Books:     []pricefeed.BookSource{f.primary},
		Generator: NewFixedGenerator(allWins(10), nil),
		Logger:    testLogger(),
		Now:       fixedNow,
	})

	run, err := broken.RunFullAudit(ctx)
	if err == nil {
		t.Fatal("Expected phase error")
	}
	if !errors.Is(err, errStoreDown) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
	if run == nil {
		t.Fatal("Expected partial run alongside the error")
	}

	// Diagnostics got as far as storage connectivity and price sources
	if len(run.Findings) == 0 {
		t.Error("Expected partial findings to remain visible")
	}
	for _, finding := range run.Findings {
		if finding.Area == domain.AreaSecurity {
			t.Error("Security phase should not have run after the abort")
		}
	}
}

func TestEngine_DeterministicFindingIDs(t *testing.T) {
	ctx := context.Background()

	f1 := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))
	f2 := newEngineFixture(t, NewFixedGenerator(allWins(10), nil))

	run1, err := f1.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}
	run2, err := f2.engine.RunFullAudit(ctx)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	if run1.RunID != run2.RunID {
		t.Errorf("Expected identical run IDs under a fixed clock, got %s vs %s", run1.RunID, run2.RunID)
	}
	if len(run1.Findings) != len(run2.Findings) {
		t.Fatalf("Expected same finding count, got %d vs %d", len(run1.Findings), len(run2.Findings))
	}
	for i := range run1.Findings {
		if run1.Findings[i].ID != run2.Findings[i].ID {
			t.Errorf("Finding %d IDs differ: %s vs %s", i, run1.Findings[i].ID, run2.Findings[i].ID)
		}
	}
}
