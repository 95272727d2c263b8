// Package tolerance implements percentage-tolerance comparison between
// recalculated values and their stored counterparts.
package tolerance

import (
	"math"

	"trading-audit-lab/internal/domain"
)

// Compare checks calculated against stored within tolerancePct percent.
//
// The percentage difference is difference / |stored| * 100, with an
// explicit branch for stored == 0: zero when calculated is also zero,
// otherwise 100 (a value appeared where none was recorded).
//
// Verdict: PASS when the difference is within tolerance, WARNING when
// within twice the tolerance, FAIL beyond that. Pure function, no
// failure modes.
func Compare(calculated, stored, tolerancePct float64, label string) domain.ToleranceResult {
	difference := math.Abs(calculated - stored)

	var percentageDiff float64
	if stored == 0 {
		if calculated != 0 {
			percentageDiff = 100
		}
	} else {
		percentageDiff = difference / math.Abs(stored) * 100
	}

	verdict := domain.VerdictFail
	switch {
	case percentageDiff <= tolerancePct:
		verdict = domain.VerdictPass
	case percentageDiff <= tolerancePct*2:
		verdict = domain.VerdictWarning
	}

	return domain.ToleranceResult{
		Label:          label,
		Calculated:     calculated,
		Stored:         stored,
		Difference:     difference,
		PercentageDiff: percentageDiff,
		ToleranceUsed:  tolerancePct,
		Verdict:        verdict,
	}
}
