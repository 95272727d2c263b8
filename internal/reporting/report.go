// Package reporting renders audit runs as CSV, JSON and Markdown.
package reporting

import (
	"time"

	"trading-audit-lab/internal/domain"
)

// Report is the assembled output of one comprehensive audit run.
type Report struct {
	GeneratedAt time.Time
	RunID       string
	Findings    []domain.AuditFinding
	Assessment  domain.GoNoGoAssessment
	Session     *domain.SessionStats
}
