package domain

// SessionConfig parameterizes the simulated trading session run by the
// comprehensive audit engine.
type SessionConfig struct {
	TradeCount        int     // synthetic trades per session
	TargetSuccessRate float64 // intended win probability, 0..1
	PositionValue     float64 // notional value per synthetic trade
}

// DefaultSessionConfig matches the engine defaults: a batch of 10
// synthetic trades with ~90% intended success rate.
var DefaultSessionConfig = SessionConfig{
	TradeCount:        10,
	TargetSuccessRate: 0.9,
	PositionValue:     100.0,
}

// SimulatedTrade is one synthetic trade outcome.
type SimulatedTrade struct {
	Symbol string
	Win    bool
	PnL    float64
}

// SessionStats aggregates a simulated session.
type SessionStats struct {
	Trades      int
	Wins        int
	TotalPnL    float64
	SuccessRate float64 // 0..1
	Notional    float64 // total position value traded, ROI denominator
}
