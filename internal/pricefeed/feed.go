// Package pricefeed defines the price sources the audits read from.
package pricefeed

import (
	"context"
	"errors"
)

// Feed errors.
var (
	// ErrUnknownSymbol is returned when a feed has no price for the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnavailable is returned when a feed cannot be reached.
	ErrUnavailable = errors.New("price feed unavailable")
)

// Feed returns the current price for a symbol from one source.
// Implementations apply their own retry/backoff; callers do not retry.
type Feed interface {
	// Name identifies the source in findings and logs.
	Name() string

	// Price returns the current price for a trading pair symbol,
	// e.g. "BTC-USDT".
	Price(ctx context.Context, symbol string) (float64, error)
}

// BookLevel is one side level of an order book.
type BookLevel struct {
	Price    float64
	Quantity float64
}

// Book is an order book snapshot for one symbol.
type Book struct {
	Symbol string
	Bids   []BookLevel // best bid first
	Asks   []BookLevel // best ask first
}

// BookSource exposes order book depth for the diagnostics checks.
type BookSource interface {
	// Depth returns a book snapshot for a symbol.
	Depth(ctx context.Context, symbol string) (*Book, error)
}
