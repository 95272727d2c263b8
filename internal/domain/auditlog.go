package domain

// Audit log entry kinds.
const (
	AuditLogPortfolio = "PORTFOLIO_AUDIT"
	AuditLogTrade     = "TRADE_AUDIT"
	AuditLogSystem    = "SYSTEM_AUDIT"
	AuditLogFull      = "FULL_AUDIT"
)

// AuditLogEntry records that an audit ran. Written fire-and-forget;
// append failures are logged, never propagated.
type AuditLogEntry struct {
	EntryID   string
	Kind      string // one of the AuditLog* constants
	RefID     string // user ID, order ID or run ID
	Outcome   string // verdict, health status or recommendation
	Timestamp int64  // Unix ms
}
