package domain

// AuditArea identifies which phase of the comprehensive audit
// produced a finding.
type AuditArea string

const (
	AreaInfrastructure     AuditArea = "INFRASTRUCTURE"
	AreaDataIntegrity      AuditArea = "DATA_INTEGRITY"
	AreaStrategyValidation AuditArea = "STRATEGY_VALIDATION"
	AreaSimulatedTrading   AuditArea = "SIMULATED_TRADING"
	AreaSecurity           AuditArea = "SECURITY"
)

// AuditAreas lists all areas in phase execution order.
var AuditAreas = []AuditArea{
	AreaInfrastructure,
	AreaDataIntegrity,
	AreaStrategyValidation,
	AreaSimulatedTrading,
	AreaSecurity,
}

// areaLabels maps areas to display labels.
var areaLabels = map[AuditArea]string{
	AreaInfrastructure:     "Infrastructure",
	AreaDataIntegrity:      "Data Integrity",
	AreaStrategyValidation: "Strategy Validation",
	AreaSimulatedTrading:   "Simulated Trading",
	AreaSecurity:           "Security",
}

// Label returns the display label for the area.
func (a AuditArea) Label() string {
	if label, ok := areaLabels[a]; ok {
		return label
	}
	return string(a)
}

// FindingStatus classifies a scored finding.
// Unlike Verdict it includes CRITICAL for findings that alone
// block a GO recommendation.
type FindingStatus string

const (
	StatusPass     FindingStatus = "PASS"
	StatusWarning  FindingStatus = "WARNING"
	StatusFail     FindingStatus = "FAIL"
	StatusCritical FindingStatus = "CRITICAL"
)

// AuditFinding is a single scored observation produced by one audit check.
type AuditFinding struct {
	ID              string // deterministic, see idhash
	Area            AuditArea
	Component       string
	Status          FindingStatus
	Score           float64 // 0-100
	Notes           []string
	Recommendations []string
	Timestamp       int64 // Unix ms
}
