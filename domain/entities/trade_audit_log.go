package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeAuditLog is the append-only forensic trail per binary trade,
// independent of the wallet ledger. One row is written for every settlement
// decision, including failures.
type TradeAuditLog struct {
	ID         int64            `db:"id"`
	TradeID    int64            `db:"trade_id"`
	Event      string           `db:"event"` // "settled", "price_unavailable"
	Detail     string           `db:"detail"`
	EntryPrice decimal.Decimal  `db:"entry_price"`
	ExitPrice  *decimal.Decimal `db:"exit_price"`
	Payout     int64            `db:"payout"`
	CreatedAt  time.Time        `db:"created_at"`
}

// NewSettlementAudit builds the audit row for a won/lost decision
func NewSettlementAudit(trade *BinaryTrade, exitPrice decimal.Decimal) *TradeAuditLog {
	return &TradeAuditLog{
		TradeID:    trade.ID,
		Event:      "settled",
		Detail:     fmt.Sprintf("%s %s: entry %s exit %s payout %d", trade.Direction, trade.Status, trade.EntryPrice, exitPrice, trade.Payout),
		EntryPrice: trade.EntryPrice,
		ExitPrice:  &exitPrice,
		Payout:     trade.Payout,
	}
}

// NewFailureAudit builds the audit row for the price-unavailable path
func NewFailureAudit(trade *BinaryTrade, reason string) *TradeAuditLog {
	return &TradeAuditLog{
		TradeID:    trade.ID,
		Event:      "price_unavailable",
		Detail:     reason,
		EntryPrice: trade.EntryPrice,
		Payout:     0,
	}
}
