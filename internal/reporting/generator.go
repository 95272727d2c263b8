package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trading-audit-lab/internal/decision"
	"trading-audit-lab/internal/domain"
)

// Export file names, as written by WriteFiles.
const (
	MarkdownFileName = "AUDIT_REPORT.md"
	CSVFileName      = "audit_findings.csv"
	JSONFileName     = "audit_findings.json"
)

// Generator assembles reports from audit run output.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles a report from a run's findings, deriving the
// go/no-go assessment.
func (g *Generator) Generate(runID string, findings []domain.AuditFinding, session *domain.SessionStats) *Report {
	return &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		Findings:    findings,
		Assessment:  decision.BuildAssessment(findings, session),
		Session:     session,
	}
}

// WriteFiles renders the report in all three formats into dir,
// creating it if needed.
func WriteFiles(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	jsonOut, err := RenderJSON(r)
	if err != nil {
		return err
	}

	files := map[string]string{
		MarkdownFileName: RenderMarkdown(r),
		CSVFileName:      RenderCSV(r.Findings),
		JSONFileName:     jsonOut,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
