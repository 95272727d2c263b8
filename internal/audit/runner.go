package audit

import (
	"context"
	"log"
	"time"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/idhash"
	"trading-audit-lab/internal/storage"
)

// DefaultRecentTrades is how many recent executions a system audit covers.
const DefaultRecentTrades = 10

// SystemRunner audits all users' portfolios and a recent window of trade
// executions, aggregating pass/fail counts into a health verdict.
type SystemRunner struct {
	portfolioAuditor *PortfolioAuditor
	tradeAuditor     *TradeAuditor
	holdings         storage.HoldingStore
	executions       storage.ExecutionStore
	auditLog         storage.AuditLogStore // optional
	recentTrades     int
	logger           *log.Logger
	now              func() time.Time
}

// SystemRunnerOptions configures a SystemRunner.
type SystemRunnerOptions struct {
	PortfolioAuditor *PortfolioAuditor
	TradeAuditor     *TradeAuditor
	Holdings         storage.HoldingStore
	Executions       storage.ExecutionStore
	AuditLog         storage.AuditLogStore // optional, append failures are logged only
	RecentTrades     int                   // defaults to DefaultRecentTrades
	Logger           *log.Logger           // optional
	Now              func() time.Time
}

// NewSystemRunner creates a new SystemRunner.
func NewSystemRunner(opts SystemRunnerOptions) *SystemRunner {
	recentTrades := opts.RecentTrades
	if recentTrades <= 0 {
		recentTrades = DefaultRecentTrades
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SystemRunner{
		portfolioAuditor: opts.PortfolioAuditor,
		tradeAuditor:     opts.TradeAuditor,
		holdings:         opts.Holdings,
		executions:       opts.Executions,
		auditLog:         opts.AuditLog,
		recentTrades:     recentTrades,
		logger:           logger,
		now:              now,
	}
}

// Run audits every user with holdings and the most recent executions.
// Per-item failures are logged and the item is omitted from the result,
// so a single broken user or trade never aborts the run. Enumeration
// failures do abort, since nothing can be audited without them.
func (r *SystemRunner) Run(ctx context.Context) (*domain.SystemAuditReport, error) {
	report := &domain.SystemAuditReport{
		StartedAt: r.now().UnixMilli(),
	}

	userIDs, err := r.holdings.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, userID := range userIDs {
		record, err := r.portfolioAuditor.AuditPortfolio(ctx, userID)
		if err != nil {
			r.logger.Printf("[sysaudit] portfolio audit %s failed, skipping: %v", userID, err)
			continue
		}
		report.PortfolioAudits = append(report.PortfolioAudits, record)
	}

	executions, err := r.executions.GetRecent(ctx, r.recentTrades)
	if err != nil {
		return nil, err
	}

	for _, exec := range executions {
		record, err := r.tradeAuditor.AuditTrade(ctx, exec.OrderID)
		if err != nil {
			r.logger.Printf("[sysaudit] trade audit %s failed, skipping: %v", exec.OrderID, err)
			continue
		}
		report.TradeAudits = append(report.TradeAudits, record)
	}

	report.Summary = summarize(report.PortfolioAudits, report.TradeAudits)
	report.FinishedAt = r.now().UnixMilli()

	r.appendLog(ctx, report)
	return report, nil
}

// summarize derives the health verdict from pass/fail counts.
func summarize(portfolios []*domain.PortfolioAuditRecord, trades []*domain.TradeAuditRecord) domain.SystemAuditSummary {
	summary := domain.SystemAuditSummary{
		TotalPortfolios: len(portfolios),
		TotalTrades:     len(trades),
	}
	for _, p := range portfolios {
		if p.Overall == domain.VerdictFail {
			summary.FailedPortfolios++
		}
	}
	for _, t := range trades {
		if t.Overall == domain.VerdictFail {
			summary.FailedTrades++
		}
	}

	switch {
	case summary.FailedPortfolios*2 > summary.TotalPortfolios && summary.TotalPortfolios > 0,
		summary.FailedTrades*2 > summary.TotalTrades && summary.TotalTrades > 0:
		summary.OverallHealth = domain.HealthCritical
	case summary.FailedPortfolios == 0 && summary.FailedTrades == 0 &&
		summary.TotalPortfolios > 0 && summary.TotalTrades > 0:
		summary.OverallHealth = domain.HealthHealthy
	default:
		summary.OverallHealth = domain.HealthDegraded
	}
	return summary
}

// appendLog records that the audit ran. Failures are logged, not propagated.
func (r *SystemRunner) appendLog(ctx context.Context, report *domain.SystemAuditReport) {
	if r.auditLog == nil {
		return
	}
	entry := &domain.AuditLogEntry{
		EntryID:   idhash.ComputeLogEntryID(domain.AuditLogSystem, "system", report.FinishedAt),
		Kind:      domain.AuditLogSystem,
		RefID:     "system",
		Outcome:   string(report.Summary.OverallHealth),
		Timestamp: report.FinishedAt,
	}
	if err := r.auditLog.Append(ctx, entry); err != nil {
		r.logger.Printf("[sysaudit] audit log append failed: %v", err)
	}
}
