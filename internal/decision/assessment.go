// Package decision projects an accumulated finding list into the final
// go/no-go readiness assessment.
package decision

import (
	"fmt"

	"trading-audit-lab/internal/domain"
)

// Gating thresholds for a GO recommendation.
const (
	// MaxFailFindings is how many FAIL findings a GO tolerates.
	MaxFailFindings = 2
	// MinMeanScore is the overall mean score a GO requires.
	MinMeanScore = 75.0
)

// Integrity level thresholds over the mean data integrity score.
const (
	integrityHighMin   = 90.0
	integrityMediumMin = 70.0
)

// BuildAssessment computes the assessment as a pure projection over the
// findings. GO requires zero CRITICAL findings, at most MaxFailFindings
// FAIL findings, and an overall mean score of at least MinMeanScore.
// session may be nil when no simulated session ran.
func BuildAssessment(findings []domain.AuditFinding, session *domain.SessionStats) domain.GoNoGoAssessment {
	var (
		criticalCount int
		failCount     int
		mainIssues    []string
		fixes         []string
	)
	for _, f := range findings {
		switch f.Status {
		case domain.StatusCritical:
			criticalCount++
		case domain.StatusFail:
			failCount++
		default:
			continue
		}
		mainIssues = append(mainIssues, f.Component)
		fixes = append(fixes, f.Recommendations...)
	}

	mean := MeanScore(findings)
	areaMeans := meanScoreByArea(findings)

	recommendation := domain.RecommendationNOGO
	if criticalCount == 0 && failCount <= MaxFailFindings && mean >= MinMeanScore {
		recommendation = domain.RecommendationGO
	}

	return domain.GoNoGoAssessment{
		ReadyForRealMoney:   recommendation == domain.RecommendationGO,
		MainIssues:          mainIssues,
		RecommendedFixes:    fixes,
		SimulatedROI:        formatROI(session),
		DataIntegrityLevel:  integrityLevel(areaMeans[domain.AreaDataIntegrity]),
		SecurityGrade:       areaMeans[domain.AreaSecurity],
		FinalRecommendation: recommendation,
		DetailedScores: domain.DetailedScores{
			Security:       areaMeans[domain.AreaSecurity],
			Accuracy:       areaMeans[domain.AreaDataIntegrity],
			Stability:      areaMeans[domain.AreaInfrastructure],
			Profitability:  areaMeans[domain.AreaSimulatedTrading],
			RiskProtection: areaMeans[domain.AreaStrategyValidation],
		},
	}
}

// MeanScore returns the mean score over all findings, 0 for none.
func MeanScore(findings []domain.AuditFinding) float64 {
	if len(findings) == 0 {
		return 0
	}
	var sum float64
	for _, f := range findings {
		sum += f.Score
	}
	return sum / float64(len(findings))
}

// meanScoreByArea returns the mean score per audit area.
// Areas without findings are absent from the map.
func meanScoreByArea(findings []domain.AuditFinding) map[domain.AuditArea]float64 {
	sums := make(map[domain.AuditArea]float64)
	counts := make(map[domain.AuditArea]int)
	for _, f := range findings {
		sums[f.Area] += f.Score
		counts[f.Area]++
	}

	means := make(map[domain.AuditArea]float64, len(sums))
	for area, sum := range sums {
		means[area] = sum / float64(counts[area])
	}
	return means
}

// integrityLevel grades the mean data integrity score.
func integrityLevel(score float64) domain.IntegrityLevel {
	switch {
	case score >= integrityHighMin:
		return domain.IntegrityHigh
	case score >= integrityMediumMin:
		return domain.IntegrityMedium
	default:
		return domain.IntegrityLow
	}
}

// formatROI renders the simulated session return as a percentage string.
func formatROI(session *domain.SessionStats) string {
	if session == nil || session.Notional == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", session.TotalPnL/session.Notional*100)
}
