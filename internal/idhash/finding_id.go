// Package idhash computes deterministic identifiers for audit runs
// and findings.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"trading-audit-lab/internal/domain"
)

// shortLen is the number of hash bytes kept before encoding.
// 12 bytes keep collision odds negligible at audit volumes while
// staying readable in reports.
const shortLen = 12

// ComputeFindingID computes a deterministic finding ID.
// Formula: base58(SHA256(area|component|timestamp)[:12]).
func ComputeFindingID(area domain.AuditArea, component string, timestampMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", area, component, timestampMs)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:shortLen])
}

// ComputeLogEntryID computes a deterministic audit log entry ID.
// Formula: base58(SHA256(kind|ref|timestamp)[:12]).
func ComputeLogEntryID(kind, refID string, timestampMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", kind, refID, timestampMs)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:shortLen])
}

// ComputeRunID computes a deterministic audit run ID.
// Formula: base58(SHA256("run"|startedAt)[:12]).
func ComputeRunID(startedAtMs int64) string {
	data := fmt.Sprintf("run|%d", startedAtMs)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:shortLen])
}
