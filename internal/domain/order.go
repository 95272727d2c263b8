package domain

// OrderType distinguishes market and limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Order is a user order as persisted by the trading layer.
type Order struct {
	OrderID  string
	UserID   string
	PairID   string // trading pair reference, may be stale
	Type     OrderType
	Quantity float64
	Price    float64 // limit price; ignored for market orders
	PlacedAt int64   // Unix ms
}

// OrderExecution is the recorded fill for an order.
type OrderExecution struct {
	OrderID    string
	Price      float64 // execution price per unit
	Fees       float64 // total fees charged
	ExecutedAt int64   // Unix ms
}

// TradingPair is a tradable market definition.
type TradingPair struct {
	PairID string // e.g. "BTC-USDT"
	Base   string
	Quote  string
	Active bool
}

// Bot is a configured trading bot. The audit only checks presence
// and active state; bot behavior is out of scope.
type Bot struct {
	BotID    string
	UserID   string
	Strategy string
	Active   bool
}
