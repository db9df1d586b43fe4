package entities

import "time"

// Ticket is a participant's entry in a draw. Immutable once created except
// for the winner fields, which are written once at settlement.
type Ticket struct {
	ID           int64     `db:"id"`
	DrawID       int64     `db:"draw_id"`
	UserID       int64     `db:"user_id"`
	SerialNumber string    `db:"serial_number"` // uuid, printed on the ticket
	Numbers      string    `db:"numbers"`       // chosen numbers, "5-12-23-31-40"
	Price        int64     `db:"price"`         // cents paid, 0 for free tickets
	IsFree       bool      `db:"is_free"`
	IsWinner     bool      `db:"is_winner"`
	PrizeAmount  int64     `db:"prize_amount"` // cents, 0 until settlement
	PurchasedAt  time.Time `db:"purchased_at"`
}

// MarkWinner records the settlement outcome on the ticket
func (t *Ticket) MarkWinner(amount int64) {
	t.IsWinner = true
	t.PrizeAmount = amount
}
