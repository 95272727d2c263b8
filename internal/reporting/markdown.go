package reporting

import (
	"fmt"
	"strings"
	"time"

	"trading-audit-lab/internal/domain"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trading Audit Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))

	// Verdict
	sb.WriteString("## Recommendation\n\n")
	sb.WriteString(fmt.Sprintf("**%s**", r.Assessment.FinalRecommendation))
	if r.Assessment.ReadyForRealMoney {
		sb.WriteString(" - ready for real money\n\n")
	} else {
		sb.WriteString(" - not ready for real money\n\n")
	}
	sb.WriteString(fmt.Sprintf("Data integrity: %s | Security grade: %.1f | Simulated ROI: %s\n\n",
		r.Assessment.DataIntegrityLevel, r.Assessment.SecurityGrade, r.Assessment.SimulatedROI))

	// Detailed scores
	sb.WriteString("## Detailed Scores\n\n")
	sb.WriteString("| Category | Score |\n")
	sb.WriteString("|----------|-------|\n")
	scores := r.Assessment.DetailedScores
	sb.WriteString(fmt.Sprintf("| Security | %.1f |\n", scores.Security))
	sb.WriteString(fmt.Sprintf("| Accuracy | %.1f |\n", scores.Accuracy))
	sb.WriteString(fmt.Sprintf("| Stability | %.1f |\n", scores.Stability))
	sb.WriteString(fmt.Sprintf("| Profitability | %.1f |\n", scores.Profitability))
	sb.WriteString(fmt.Sprintf("| Risk Protection | %.1f |\n", scores.RiskProtection))
	sb.WriteString("\n")

	// Findings grouped by area, in phase order
	sb.WriteString("## Findings\n\n")
	for _, area := range domain.AuditAreas {
		var areaFindings []domain.AuditFinding
		for _, f := range r.Findings {
			if f.Area == area {
				areaFindings = append(areaFindings, f)
			}
		}
		if len(areaFindings) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("### %s\n\n", area.Label()))
		sb.WriteString("| Component | Status | Score | Notes |\n")
		sb.WriteString("|-----------|--------|-------|-------|\n")
		for _, f := range areaFindings {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.1f | %s |\n",
				f.Component, f.Status, f.Score, strings.Join(f.Notes, "; ")))
		}
		sb.WriteString("\n")
	}

	// Issues and fixes
	if len(r.Assessment.MainIssues) > 0 {
		sb.WriteString("## Main Issues\n\n")
		for _, issue := range r.Assessment.MainIssues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
		sb.WriteString("\n")
	}
	if len(r.Assessment.RecommendedFixes) > 0 {
		sb.WriteString("## Recommended Fixes\n\n")
		for _, fix := range r.Assessment.RecommendedFixes {
			sb.WriteString(fmt.Sprintf("- %s\n", fix))
		}
		sb.WriteString("\n")
	}

	// Simulated session
	if r.Session != nil {
		sb.WriteString("## Simulated Session\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Trades | %d |\n", r.Session.Trades))
		sb.WriteString(fmt.Sprintf("| Wins | %d |\n", r.Session.Wins))
		sb.WriteString(fmt.Sprintf("| Success Rate | %.0f%% |\n", r.Session.SuccessRate*100))
		sb.WriteString(fmt.Sprintf("| Total P&L | %.2f |\n", r.Session.TotalPnL))
		sb.WriteString("\n")
	}

	return sb.String()
}
