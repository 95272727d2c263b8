package engine

import (
	"trading-audit-lab/internal/domain"
	"trading-audit-lab/internal/idhash"
)

// Run accumulates the findings of one comprehensive audit invocation.
// Each invocation gets a fresh Run, so overlapping audits never
// interleave their findings.
type Run struct {
	RunID      string
	StartedAt  int64 // Unix ms
	FinishedAt int64 // Unix ms
	Findings   []domain.AuditFinding
	Session    *domain.SessionStats // set by the simulated trading phase
}

// newRun creates a run with a deterministic ID derived from its start time.
func newRun(startedAtMs int64) *Run {
	return &Run{
		RunID:     idhash.ComputeRunID(startedAtMs),
		StartedAt: startedAtMs,
	}
}

// add appends a finding, assigning its deterministic ID and timestamp.
func (r *Run) add(timestampMs int64, f domain.AuditFinding) {
	f.ID = idhash.ComputeFindingID(f.Area, f.Component, timestampMs)
	f.Timestamp = timestampMs
	r.Findings = append(r.Findings, f)
}

// CountByStatus returns how many findings carry the given status.
func (r *Run) CountByStatus(status domain.FindingStatus) int {
	n := 0
	for _, f := range r.Findings {
		if f.Status == status {
			n++
		}
	}
	return n
}
