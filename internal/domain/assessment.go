package domain

// Recommendation is the final binary readiness verdict.
type Recommendation string

const (
	RecommendationGO   Recommendation = "GO"
	RecommendationNOGO Recommendation = "NO-GO"
)

// IntegrityLevel grades data integrity from finding scores.
type IntegrityLevel string

const (
	IntegrityHigh   IntegrityLevel = "High"
	IntegrityMedium IntegrityLevel = "Medium"
	IntegrityLow    IntegrityLevel = "Low"
)

// DetailedScores holds per-area mean scores.
type DetailedScores struct {
	Security       float64 // mean of SECURITY findings
	Accuracy       float64 // mean of DATA_INTEGRITY findings
	Stability      float64 // mean of INFRASTRUCTURE findings
	Profitability  float64 // mean of SIMULATED_TRADING findings
	RiskProtection float64 // mean of STRATEGY_VALIDATION findings
}

// GoNoGoAssessment is a pure projection over a finding list.
// It is computed on demand and never persisted independently.
type GoNoGoAssessment struct {
	ReadyForRealMoney   bool
	MainIssues          []string // component names of CRITICAL/FAIL findings
	RecommendedFixes    []string // flattened recommendations of those findings
	SimulatedROI        string   // formatted percentage, e.g. "4.25%"
	DataIntegrityLevel  IntegrityLevel
	SecurityGrade       float64
	FinalRecommendation Recommendation
	DetailedScores      DetailedScores
}
