package pricefeed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sample is one observed price at a point in time
type Sample struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// Feed is the best-effort external price oracle used for trade settlement.
// Lookups must be bounded by the caller's context; a missing price is
// reported as ok=false, never as a blocking retry.
type Feed interface {
	// PriceAt returns the price observed closest to t, within the feed's
	// lookup tolerance
	PriceAt(ctx context.Context, symbol string, t time.Time) (decimal.Decimal, bool)

	// Latest returns the most recent known price for a symbol
	Latest(ctx context.Context, symbol string) (decimal.Decimal, bool)

	// IsStale reports whether the symbol's latest sample is older than the
	// staleness horizon
	IsStale(symbol string) bool
}
