package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is admin-managed reference data for a tradeable symbol.
type Instrument struct {
	ID               int64           `db:"id"`
	Symbol           string          `db:"symbol"` // "BTCUSDT"
	Name             string          `db:"name"`
	PayoutMultiplier decimal.Decimal `db:"payout_multiplier"` // e.g. 1.85
	MinStake         int64           `db:"min_stake"`         // cents
	MaxStake         int64           `db:"max_stake"`         // cents
	Enabled          bool            `db:"enabled"`
	CreatedAt        time.Time       `db:"created_at"`
}
