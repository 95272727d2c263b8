// Package audit implements per-portfolio and per-trade tolerance audits
// and the system-wide runner that aggregates them into a health verdict.
package audit

import (
	"context"
	"fmt"
	"log"
	"time"

	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/pricefeed"
	"trading-audit-lab/internal/storage"
	"trading-audit-lab/internal/tolerance"
)

// PortfolioAuditor recomputes aggregate portfolio metrics from holdings
// and compares them against the stored aggregates.
type PortfolioAuditor struct {
	holdings   storage.HoldingStore
	portfolios storage.PortfolioStore
	feed       pricefeed.Feed
	logger     *log.Logger
	now        func() time.Time
}

// PortfolioAuditorOptions configures a PortfolioAuditor.
type PortfolioAuditorOptions struct {
	Holdings   storage.HoldingStore
	Portfolios storage.PortfolioStore
	Feed       pricefeed.Feed
	Logger     *log.Logger // optional
	Now        func() time.Time
}

// NewPortfolioAuditor creates a new PortfolioAuditor.
func NewPortfolioAuditor(opts PortfolioAuditorOptions) *PortfolioAuditor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &PortfolioAuditor{
		holdings:   opts.Holdings,
		portfolios: opts.Portfolios,
		feed:       opts.Feed,
		logger:     logger,
		now:        now,
	}
}

// AuditPortfolio recomputes the five aggregate metrics for a user and
// compares each against the stored aggregate at the default tolerance.
// Read failures from the holdings or portfolio stores propagate to the
// caller; holdings are never written back.
func (a *PortfolioAuditor) AuditPortfolio(ctx context.Context, userID string) (*domain.PortfolioAuditRecord, error) {
	holdings, err := a.holdings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read holdings for %s: %w", userID, err)
	}

	record := &domain.PortfolioAuditRecord{
		UserID:        userID,
		Results:       make(map[string]domain.ToleranceResult, len(domain.PortfolioMetrics)),
		HoldingsCount: len(holdings),
		Timestamp:     a.now().UnixMilli(),
	}

	if len(holdings) == 0 {
		// No holdings means nothing to diverge from
		for _, metric := range domain.PortfolioMetrics {
			record.Results[metric] = tolerance.Compare(0, 0, domain.DefaultTolerancePct, metric)
		}
		record.Overall = overallOf(record.Results)
		return record, nil
	}

	stored, err := a.portfolios.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read portfolio summary for %s: %w", userID, err)
	}

	var totalValue, totalInvested, unrealizedPnL, realizedPnL float64
	for _, h := range holdings {
		price := a.priceOrCost(ctx, h)
		currentValue := h.Quantity * price
		totalValue += currentValue
		totalInvested += h.InvestedTotal
		unrealizedPnL += currentValue - h.InvestedTotal
		realizedPnL += h.RealizedPnL
	}
	totalPnL := unrealizedPnL + realizedPnL

	record.Results[domain.MetricTotalValue] = tolerance.Compare(totalValue, stored.TotalValue, domain.DefaultTolerancePct, domain.MetricTotalValue)
	record.Results[domain.MetricTotalInvested] = tolerance.Compare(totalInvested, stored.TotalInvested, domain.DefaultTolerancePct, domain.MetricTotalInvested)
	record.Results[domain.MetricUnrealizedPnL] = tolerance.Compare(unrealizedPnL, stored.UnrealizedPnL, domain.DefaultTolerancePct, domain.MetricUnrealizedPnL)
	record.Results[domain.MetricRealizedPnL] = tolerance.Compare(realizedPnL, stored.RealizedPnL, domain.DefaultTolerancePct, domain.MetricRealizedPnL)
	record.Results[domain.MetricTotalPnL] = tolerance.Compare(totalPnL, stored.TotalPnL, domain.DefaultTolerancePct, domain.MetricTotalPnL)
	record.Overall = overallOf(record.Results)

	return record, nil
}

// priceOrCost returns the current market price for a holding's asset,
// falling back to the holding's average cost if the feed has no price.
func (a *PortfolioAuditor) priceOrCost(ctx context.Context, h *domain.Holding) float64 {
	price, err := a.feed.Price(ctx, h.Asset)
	if err != nil {
		a.logger.Printf("[audit] no price for %s, using average cost: %v", h.Asset, err)
		return h.AverageCost
	}
	return price
}

// overallOf returns the worst verdict among the per-metric results.
func overallOf(results map[string]domain.ToleranceResult) domain.Verdict {
	verdicts := make([]domain.Verdict, 0, len(results))
	for _, r := range results {
		verdicts = append(verdicts, r.Verdict)
	}
	return domain.WorstVerdict(verdicts...)
}
