package reporting

import (
	"encoding/json"
	"fmt"
	"time"

	"trading-audit-lab/internal/domain"
)

// Wire types for the JSON export. Kept separate from the domain structs
// so the export format stays stable if internal fields move.

type jsonReport struct {
	GeneratedAt string         `json:"generatedAt"`
	RunID       string         `json:"runId"`
	Findings    []jsonFinding  `json:"findings"`
	Assessment  jsonAssessment `json:"assessment"`
	Session     *jsonSession   `json:"session,omitempty"`
}

type jsonFinding struct {
	ID              string   `json:"id"`
	AuditArea       string   `json:"auditArea"`
	Component       string   `json:"component"`
	Status          string   `json:"status"`
	Score           float64  `json:"score"`
	Notes           []string `json:"notes"`
	Recommendations []string `json:"recommendations,omitempty"`
	Timestamp       int64    `json:"timestamp"`
}

type jsonAssessment struct {
	ReadyForRealMoney   bool       `json:"readyForRealMoney"`
	MainIssues          []string   `json:"mainIssues"`
	RecommendedFixes    []string   `json:"recommendedFixes"`
	SimulatedROI        string     `json:"simulatedROI"`
	DataIntegrityLevel  string     `json:"dataIntegrityLevel"`
	SecurityGrade       float64    `json:"securityGrade"`
	FinalRecommendation string     `json:"finalRecommendation"`
	DetailedScores      jsonScores `json:"detailedScores"`
}

type jsonScores struct {
	Security       float64 `json:"security"`
	Accuracy       float64 `json:"accuracy"`
	Stability      float64 `json:"stability"`
	Profitability  float64 `json:"profitability"`
	RiskProtection float64 `json:"riskProtection"`
}

type jsonSession struct {
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	TotalPnL    float64 `json:"totalPnL"`
	SuccessRate float64 `json:"successRate"`
}

// RenderJSON renders the report as an indented JSON string.
func RenderJSON(r *Report) (string, error) {
	out := jsonReport{
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		RunID:       r.RunID,
		Findings:    make([]jsonFinding, 0, len(r.Findings)),
		Assessment:  toJSONAssessment(r.Assessment),
	}
	for _, f := range r.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			ID:              f.ID,
			AuditArea:       f.Area.Label(),
			Component:       f.Component,
			Status:          string(f.Status),
			Score:           f.Score,
			Notes:           f.Notes,
			Recommendations: f.Recommendations,
			Timestamp:       f.Timestamp,
		})
	}
	if r.Session != nil {
		out.Session = &jsonSession{
			Trades:      r.Session.Trades,
			Wins:        r.Session.Wins,
			TotalPnL:    r.Session.TotalPnL,
			SuccessRate: r.Session.SuccessRate,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}

func toJSONAssessment(a domain.GoNoGoAssessment) jsonAssessment {
	return jsonAssessment{
		ReadyForRealMoney:   a.ReadyForRealMoney,
		MainIssues:          a.MainIssues,
		RecommendedFixes:    a.RecommendedFixes,
		SimulatedROI:        a.SimulatedROI,
		DataIntegrityLevel:  string(a.DataIntegrityLevel),
		SecurityGrade:       a.SecurityGrade,
		FinalRecommendation: string(a.FinalRecommendation),
		DetailedScores: jsonScores{
			Security:       a.DetailedScores.Security,
			Accuracy:       a.DetailedScores.Accuracy,
			Stability:      a.DetailedScores.Stability,
			Profitability:  a.DetailedScores.Profitability,
			RiskProtection: a.DetailedScores.RiskProtection,
		},
	}
}
