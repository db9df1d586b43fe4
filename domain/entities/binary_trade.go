package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeDirection is the wagered price direction
type TradeDirection string

const (
	TradeDirectionUp   TradeDirection = "up"
	TradeDirectionDown TradeDirection = "down"
)

// TradeStatus is the lifecycle state of a binary trade. won, lost and error
// are terminal; exactly one settlement transition is valid.
type TradeStatus string

const (
	TradeStatusActive TradeStatus = "active"
	TradeStatusWon    TradeStatus = "won"
	TradeStatusLost   TradeStatus = "lost"
	TradeStatusError  TradeStatus = "error"
)

// BinaryTrade is a time-boxed wager on price direction, settled against an
// external price feed when its expiry passes.
type BinaryTrade struct {
	ID           int64            `db:"id"`
	UserID       int64            `db:"user_id"`
	InstrumentID int64            `db:"instrument_id"`
	Symbol       string           `db:"symbol"` // captured from instrument at entry
	Direction    TradeDirection   `db:"direction"`
	Stake        int64            `db:"stake"` // cents, already debited at entry
	EntryPrice   decimal.Decimal  `db:"entry_price"`
	ExitPrice    *decimal.Decimal `db:"exit_price"` // NULL until settled
	Duration     time.Duration    `db:"duration_seconds"`
	EnteredAt    time.Time        `db:"entered_at"`
	ExpiresAt    time.Time        `db:"expires_at"`
	Status       TradeStatus      `db:"status"`
	Payout       int64            `db:"payout"` // cents, 0 unless won
	SettledAt    *time.Time       `db:"settled_at"`
	CreatedAt    time.Time        `db:"created_at"`
}

// IsActive returns true while the trade awaits settlement
func (t *BinaryTrade) IsActive() bool {
	return t.Status == TradeStatusActive
}

// IsExpired returns true once the trade has passed its expiry timestamp
func (t *BinaryTrade) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Outcome applies the decision rule against the resolving price. Ties count
// as a loss.
func (t *BinaryTrade) Outcome(exitPrice decimal.Decimal) TradeStatus {
	switch t.Direction {
	case TradeDirectionUp:
		if exitPrice.GreaterThan(t.EntryPrice) {
			return TradeStatusWon
		}
	case TradeDirectionDown:
		if exitPrice.LessThan(t.EntryPrice) {
			return TradeStatusWon
		}
	}
	return TradeStatusLost
}

// ComputePayout returns the win payout in cents: stake multiplied by the
// instrument's payout multiplier, rounded down.
func (t *BinaryTrade) ComputePayout(multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(t.Stake).Mul(multiplier).Floor().IntPart()
}

// Settle records a terminal won/lost outcome
func (t *BinaryTrade) Settle(status TradeStatus, exitPrice decimal.Decimal, payout int64, now time.Time) {
	t.Status = status
	t.ExitPrice = &exitPrice
	t.Payout = payout
	t.SettledAt = &now
}

// Fail records the terminal error outcome used when no resolving price is
// available. No payout, no exit price.
func (t *BinaryTrade) Fail(now time.Time) {
	t.Status = TradeStatusError
	t.Payout = 0
	t.SettledAt = &now
}
