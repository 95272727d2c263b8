package domain

// Portfolio metric names, used as keys in PortfolioAuditRecord.Results.
const (
	MetricTotalValue    = "totalValue"
	MetricTotalInvested = "totalInvested"
	MetricUnrealizedPnL = "unrealizedPnL"
	MetricRealizedPnL   = "realizedPnL"
	MetricTotalPnL      = "totalPnL"
)

// PortfolioMetrics lists the audited metrics in report order.
var PortfolioMetrics = []string{
	MetricTotalValue,
	MetricTotalInvested,
	MetricUnrealizedPnL,
	MetricRealizedPnL,
	MetricTotalPnL,
}

// PortfolioAuditRecord is the result of auditing one user's portfolio.
// Created once per audit run, read-only afterward.
type PortfolioAuditRecord struct {
	UserID        string
	Results       map[string]ToleranceResult // keyed by metric name
	HoldingsCount int
	Timestamp     int64 // Unix ms
	Overall       Verdict
}

// TradeAuditRecord is the result of auditing one order/execution pair.
type TradeAuditRecord struct {
	OrderID         string
	ExecutionPrice  ToleranceResult
	Fees            ToleranceResult
	PortfolioUpdate ToleranceResult // placeholder, always PASS (unimplemented)
	BalanceUpdate   ToleranceResult // placeholder, always PASS (unimplemented)
	Timestamp       int64           // Unix ms
	Overall         Verdict
}

// HealthStatus summarizes a system-wide audit run.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthCritical HealthStatus = "CRITICAL"
)

// SystemAuditSummary aggregates pass/fail counts across a run.
type SystemAuditSummary struct {
	TotalPortfolios  int
	FailedPortfolios int
	TotalTrades      int
	FailedTrades     int
	OverallHealth    HealthStatus
}

// SystemAuditReport is the result of a full system-wide audit.
type SystemAuditReport struct {
	PortfolioAudits []*PortfolioAuditRecord
	TradeAudits     []*TradeAuditRecord
	Summary         SystemAuditSummary
	StartedAt       int64 // Unix ms
	FinishedAt      int64 // Unix ms
}
