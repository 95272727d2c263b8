package domain

// Default thresholds used across audits.
const (
	// DefaultTolerancePct is the maximum allowed percentage deviation
	// between a recalculated value and its stored counterpart.
	DefaultTolerancePct = 1.0

	// DefaultFeeRate is the assumed trading fee rate (0.1%).
	DefaultFeeRate = 0.001
)

// ToleranceResult is the outcome of comparing a recalculated value
// against a stored value within a percentage tolerance.
// Created once per comparison, never mutated.
type ToleranceResult struct {
	Label          string  // human-readable name of the checked metric
	Calculated     float64 // value recomputed from source records
	Stored         float64 // value read from persistence
	Difference     float64 // |calculated - stored|
	PercentageDiff float64 // difference relative to |stored|, in percent
	ToleranceUsed  float64 // tolerance the verdict was derived with
	Verdict        Verdict
}
