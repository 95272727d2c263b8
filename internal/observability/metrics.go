// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Audit run metrics
	FullAuditRunsTotal   *prometheus.CounterVec
	SystemAuditRunsTotal *prometheus.CounterVec
	FullAuditDuration    prometheus.Histogram
	SystemAuditDuration  prometheus.Histogram

	// Finding metrics
	FindingsTotal *prometheus.CounterVec

	// Per-item audit metrics
	PortfolioAuditsTotal *prometheus.CounterVec
	TradeAuditsTotal     *prometheus.CounterVec

	// Last-run state
	LastFullAuditTimestamp   prometheus.Gauge
	LastSystemAuditTimestamp prometheus.Gauge
	LastMeanScore            prometheus.Gauge
	LastRecommendationGO     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_audit_lab"
	}

	return &Metrics{
		FullAuditRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "full_audit_runs_total",
			Help:      "Total number of comprehensive audit runs by outcome",
		}, []string{"outcome"}),
		SystemAuditRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sysaudit",
			Name:      "system_audit_runs_total",
			Help:      "Total number of system-wide audit runs by health verdict",
		}, []string{"health"}),
		FullAuditDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "full_audit_duration_seconds",
			Help:      "Comprehensive audit run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SystemAuditDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sysaudit",
			Name:      "system_audit_duration_seconds",
			Help:      "System-wide audit run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FindingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "findings_total",
			Help:      "Total number of findings produced by area and status",
		}, []string{"area", "status"}),
		PortfolioAuditsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sysaudit",
			Name:      "portfolio_audits_total",
			Help:      "Total number of portfolio audits by verdict",
		}, []string{"verdict"}),
		TradeAuditsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sysaudit",
			Name:      "trade_audits_total",
			Help:      "Total number of trade audits by verdict",
		}, []string{"verdict"}),
		LastFullAuditTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_full_audit_timestamp",
			Help:      "Unix timestamp of last successful comprehensive audit",
		}),
		LastSystemAuditTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_system_audit_timestamp",
			Help:      "Unix timestamp of last successful system-wide audit",
		}),
		LastMeanScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "last_mean_score",
			Help:      "Mean finding score of the last comprehensive audit",
		}),
		LastRecommendationGO: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "last_recommendation_go",
			Help:      "1 if the last assessment recommended GO, 0 otherwise",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFullAudit records a comprehensive audit run.
func RecordFullAudit(outcome string, durationSeconds float64, finishedAtMs int64) {
	DefaultMetrics.FullAuditRunsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.FullAuditDuration.Observe(durationSeconds)
	if outcome == "ok" {
		DefaultMetrics.LastFullAuditTimestamp.Set(float64(finishedAtMs) / 1000)
	}
}

// RecordSystemAudit records a system-wide audit run.
func RecordSystemAudit(health string, durationSeconds float64, finishedAtMs int64) {
	DefaultMetrics.SystemAuditRunsTotal.WithLabelValues(health).Inc()
	DefaultMetrics.SystemAuditDuration.Observe(durationSeconds)
	DefaultMetrics.LastSystemAuditTimestamp.Set(float64(finishedAtMs) / 1000)
}

// RecordFinding counts one finding by area and status.
func RecordFinding(area, status string) {
	DefaultMetrics.FindingsTotal.WithLabelValues(area, status).Inc()
}

// RecordPortfolioAudit counts one portfolio audit by verdict.
func RecordPortfolioAudit(verdict string) {
	DefaultMetrics.PortfolioAuditsTotal.WithLabelValues(verdict).Inc()
}

// RecordTradeAudit counts one trade audit by verdict.
func RecordTradeAudit(verdict string) {
	DefaultMetrics.TradeAuditsTotal.WithLabelValues(verdict).Inc()
}

// RecordAssessment records the scoring outcome of the last run.
func RecordAssessment(meanScore float64, goRecommended bool) {
	DefaultMetrics.LastMeanScore.Set(meanScore)
	if goRecommended {
		DefaultMetrics.LastRecommendationGO.Set(1)
	} else {
		DefaultMetrics.LastRecommendationGO.Set(0)
	}
}
