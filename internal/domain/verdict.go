package domain

// Verdict classifies a single tolerance comparison.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarning Verdict = "WARNING"
	VerdictFail    Verdict = "FAIL"
)

// verdictRank orders verdicts from best to worst.
var verdictRank = map[Verdict]int{
	VerdictPass:    0,
	VerdictWarning: 1,
	VerdictFail:    2,
}

// Worst returns the worse of v and other (FAIL > WARNING > PASS).
func (v Verdict) Worst(other Verdict) Verdict {
	if verdictRank[other] > verdictRank[v] {
		return other
	}
	return v
}

// WorstVerdict returns the worst verdict among vs.
// Returns PASS for an empty list.
func WorstVerdict(vs ...Verdict) Verdict {
	worst := VerdictPass
	for _, v := range vs {
		worst = worst.Worst(v)
	}
	return worst
}
