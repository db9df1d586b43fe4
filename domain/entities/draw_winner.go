package entities

import "time"

// PrizeTier names a fixed prize band within a draw's payout structure
type PrizeTier string

const (
	PrizeTierMegaCash   PrizeTier = "mega_cash"
	PrizeTierCar        PrizeTier = "car"
	PrizeTierMotorcycle PrizeTier = "motorcycle"
	PrizeTierDevice     PrizeTier = "device"
	PrizeTierCash50     PrizeTier = "cash_50"
	PrizeTierCash20     PrizeTier = "cash_20"
	PrizeTierCash10     PrizeTier = "cash_10"
	PrizeTierCash5      PrizeTier = "cash_5"
)

// DrawWinner is a settlement-output record. A draw's full winner set is
// written once, atomically, never partially. Display-only rows carry no
// ticket or user reference and move no money.
type DrawWinner struct {
	ID            int64      `db:"id"`
	DrawID        int64      `db:"draw_id"`
	TicketID      *int64     `db:"ticket_id"` // NULL for display-only rows
	UserID        *int64     `db:"user_id"`   // NULL for display-only rows
	Tier          PrizeTier  `db:"tier"`
	Amount        int64      `db:"amount"` // cents
	Description   string     `db:"description"`
	DisplayOnly   bool       `db:"display_only"`
	Distributed   bool       `db:"distributed"`
	DistributedAt *time.Time `db:"distributed_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

// MarkDistributed records that the prize reached the wallet (or, for
// display-only rows, that the record is final).
func (w *DrawWinner) MarkDistributed(now time.Time) {
	w.Distributed = true
	w.DistributedAt = &now
}

// IsReal returns true if the row pays a real participant
func (w *DrawWinner) IsReal() bool {
	return !w.DisplayOnly && w.UserID != nil && w.Amount > 0
}
