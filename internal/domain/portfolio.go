package domain

// Holding is one asset position inside a user's portfolio.
type Holding struct {
	UserID        string
	Asset         string  // symbol, e.g. "BTC"
	Quantity      float64 // units held
	AverageCost   float64 // average acquisition price per unit
	CurrentValue  float64 // stored valuation (quantity * last known price)
	InvestedTotal float64 // total invested into this position
	UnrealizedPnL float64 // stored unrealized profit/loss
	RealizedPnL   float64 // stored realized profit/loss
}

// PortfolioSummary holds the persisted aggregate metrics for a user.
// The portfolio audit recomputes these from holdings and compares.
type PortfolioSummary struct {
	UserID        string
	TotalValue    float64
	TotalInvested float64
	UnrealizedPnL float64
	RealizedPnL   float64
	TotalPnL      float64
	UpdatedAt     int64 // Unix ms
}
