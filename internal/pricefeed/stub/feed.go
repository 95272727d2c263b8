package stub

import (
	"context"
	"sync"

	"trading-audit-lab/internal/pricefeed"
)

// StubFeed returns fixed in-memory prices for testing and fixture runs.
// Implements pricefeed.Feed and pricefeed.BookSource interfaces.
type StubFeed struct {
	mu     sync.RWMutex
	name   string
	prices map[string]float64
	failed bool
}

// NewStubFeed creates a new stub feed with the given prices.
func NewStubFeed(name string, prices map[string]float64) *StubFeed {
	p := make(map[string]float64, len(prices))
	for symbol, price := range prices {
		p[symbol] = price
	}
	return &StubFeed{name: name, prices: p}
}

// Name returns the configured source name.
func (f *StubFeed) Name() string {
	return f.name
}

// Price returns the fixed price for a symbol.
func (f *StubFeed) Price(_ context.Context, symbol string) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.failed {
		return 0, pricefeed.ErrUnavailable
	}
	price, exists := f.prices[symbol]
	if !exists {
		return 0, pricefeed.ErrUnknownSymbol
	}
	return price, nil
}

// Depth returns a synthetic two-level book around the fixed price.
func (f *StubFeed) Depth(_ context.Context, symbol string) (*pricefeed.Book, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.failed {
		return nil, pricefeed.ErrUnavailable
	}
	price, exists := f.prices[symbol]
	if !exists {
		return nil, pricefeed.ErrUnknownSymbol
	}
	return &pricefeed.Book{
		Symbol: symbol,
		Bids: []pricefeed.BookLevel{
			{Price: price * 0.999, Quantity: 10},
			{Price: price * 0.998, Quantity: 25},
		},
		Asks: []pricefeed.BookLevel{
			{Price: price * 1.001, Quantity: 10},
			{Price: price * 1.002, Quantity: 25},
		},
	}, nil
}

// SetPrice updates the price for a symbol.
func (f *StubFeed) SetPrice(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
}

// SetFailed toggles the feed into an unavailable state.
func (f *StubFeed) SetFailed(failed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = failed
}
