package decision

import (
	"testing"

	"trading-audit-lab/internal/domain"
)

// passing returns n PASS findings with the given score in one area.
func passing(area domain.AuditArea, score float64, n int) []domain.AuditFinding {
	findings := make([]domain.AuditFinding, n)
	for i := range findings {
		findings[i] = domain.AuditFinding{
			Area:      area,
			Component: "check",
			Status:    domain.StatusPass,
			Score:     score,
		}
	}
	return findings
}

func TestBuildAssessment_CriticalBlocksGO(t *testing.T) {
	// Mean score is high, but one CRITICAL alone forces NO-GO
	findings := passing(domain.AreaInfrastructure, 100, 9)
	findings = append(findings, domain.AuditFinding{
		Area:            domain.AreaSecurity,
		Component:       "API Key Exposure",
		Status:          domain.StatusCritical,
		Score:           0,
		Recommendations: []string{"Rotate the exposed keys"},
	})

	assessment := BuildAssessment(findings, nil)

	if assessment.FinalRecommendation != domain.RecommendationNOGO {
		t.Errorf("Expected NO-GO, got %v", assessment.FinalRecommendation)
	}
	if assessment.ReadyForRealMoney {
		t.Error("Expected not ready for real money")
	}
	if len(assessment.MainIssues) != 1 || assessment.MainIssues[0] != "API Key Exposure" {
		t.Errorf("Expected main issue from the CRITICAL finding, got %v", assessment.MainIssues)
	}
	if len(assessment.RecommendedFixes) != 1 || assessment.RecommendedFixes[0] != "Rotate the exposed keys" {
		t.Errorf("Expected flattened recommendation, got %v", assessment.RecommendedFixes)
	}
}

func TestBuildAssessment_MeanThreshold(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  domain.Recommendation
	}{
		{"ExactlyAtThreshold", 75.0, domain.RecommendationGO},
		{"JustBelowThreshold", 74.9, domain.RecommendationNOGO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := passing(domain.AreaInfrastructure, tt.score, 10)
			assessment := BuildAssessment(findings, nil)
			if assessment.FinalRecommendation != tt.want {
				t.Errorf("Expected %v at mean %v, got %v", tt.want, tt.score, assessment.FinalRecommendation)
			}
		})
	}
}

func TestBuildAssessment_FailCountGate(t *testing.T) {
	base := passing(domain.AreaInfrastructure, 100, 20)

	fail := domain.AuditFinding{
		Area:      domain.AreaDataIntegrity,
		Component: "Price Feed Accuracy",
		Status:    domain.StatusFail,
		Score:     80,
	}

	// Two FAILs still GO
	twoFails := append(append([]domain.AuditFinding{}, base...), fail, fail)
	if got := BuildAssessment(twoFails, nil).FinalRecommendation; got != domain.RecommendationGO {
		t.Errorf("Expected GO with 2 FAILs, got %v", got)
	}

	// Three FAILs is over the limit
	threeFails := append(append([]domain.AuditFinding{}, base...), fail, fail, fail)
	if got := BuildAssessment(threeFails, nil).FinalRecommendation; got != domain.RecommendationNOGO {
		t.Errorf("Expected NO-GO with 3 FAILs, got %v", got)
	}
}

func TestBuildAssessment_DetailedScores(t *testing.T) {
	var findings []domain.AuditFinding
	findings = append(findings, passing(domain.AreaSecurity, 90, 2)...)
	findings = append(findings, passing(domain.AreaDataIntegrity, 80, 2)...)
	findings = append(findings, passing(domain.AreaInfrastructure, 100, 1)...)
	findings = append(findings, passing(domain.AreaSimulatedTrading, 70, 2)...)
	findings = append(findings, passing(domain.AreaStrategyValidation, 60, 3)...)

	assessment := BuildAssessment(findings, nil)

	scores := assessment.DetailedScores
	if scores.Security != 90 {
		t.Errorf("Expected security 90, got %v", scores.Security)
	}
	if scores.Accuracy != 80 {
		t.Errorf("Expected accuracy 80, got %v", scores.Accuracy)
	}
	if scores.Stability != 100 {
		t.Errorf("Expected stability 100, got %v", scores.Stability)
	}
	if scores.Profitability != 70 {
		t.Errorf("Expected profitability 70, got %v", scores.Profitability)
	}
	if scores.RiskProtection != 60 {
		t.Errorf("Expected risk protection 60, got %v", scores.RiskProtection)
	}
	if assessment.SecurityGrade != 90 {
		t.Errorf("Expected security grade 90, got %v", assessment.SecurityGrade)
	}
}

func TestBuildAssessment_IntegrityLevels(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  domain.IntegrityLevel
	}{
		{"High", 90, domain.IntegrityHigh},
		{"Medium", 89.9, domain.IntegrityMedium},
		{"MediumLow", 70, domain.IntegrityMedium},
		{"Low", 69.9, domain.IntegrityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := passing(domain.AreaDataIntegrity, tt.score, 3)
			assessment := BuildAssessment(findings, nil)
			if assessment.DataIntegrityLevel != tt.want {
				t.Errorf("Expected %v at %v, got %v", tt.want, tt.score, assessment.DataIntegrityLevel)
			}
		})
	}
}

func TestBuildAssessment_SimulatedROI(t *testing.T) {
	findings := passing(domain.AreaSimulatedTrading, 100, 1)

	assessment := BuildAssessment(findings, &domain.SessionStats{
		Trades:   10,
		Wins:     9,
		TotalPnL: 25.0,
		Notional: 1000.0,
	})
	if assessment.SimulatedROI != "+2.50%" {
		t.Errorf("Expected +2.50%%, got %s", assessment.SimulatedROI)
	}

	negative := BuildAssessment(findings, &domain.SessionStats{
		Trades:   10,
		TotalPnL: -12.5,
		Notional: 1000.0,
	})
	if negative.SimulatedROI != "-1.25%" {
		t.Errorf("Expected -1.25%%, got %s", negative.SimulatedROI)
	}

	if got := BuildAssessment(findings, nil).SimulatedROI; got != "N/A" {
		t.Errorf("Expected N/A without a session, got %s", got)
	}
}

func TestBuildAssessment_EmptyFindings(t *testing.T) {
	assessment := BuildAssessment(nil, nil)

	if assessment.FinalRecommendation != domain.RecommendationNOGO {
		t.Errorf("Expected NO-GO for empty findings, got %v", assessment.FinalRecommendation)
	}
	if assessment.DataIntegrityLevel != domain.IntegrityLow {
		t.Errorf("Expected Low integrity for empty findings, got %v", assessment.DataIntegrityLevel)
	}
}
