package entities

import "time"

// DrawStatus is the lifecycle state of a draw
type DrawStatus string

const (
	DrawStatusScheduled DrawStatus = "scheduled"
	DrawStatusActive    DrawStatus = "active"
	DrawStatusCompleted DrawStatus = "completed"
	DrawStatusCancelled DrawStatus = "cancelled"
)

// Draw represents a single scheduled resolution event for a lottery type.
// It transitions to completed exactly once; the status precondition is
// checked under row lock in the same transaction as the settlement writes.
type Draw struct {
	ID                int64         `db:"id"`
	LotteryTypeID     int64         `db:"lottery_type_id"`
	Frequency         DrawFrequency `db:"frequency"` // captured from lottery type at creation
	DrawDate          time.Time     `db:"draw_date"`
	Status            DrawStatus    `db:"status"`
	TotalPool         int64         `db:"total_pool"`         // cents, gross intake
	PlatformFee       int64         `db:"platform_fee"`       // cents withheld
	DistributablePool int64         `db:"distributable_pool"` // cents available to winners
	TicketsSold       int64         `db:"tickets_sold"`
	WinningNumbers    *string       `db:"winning_numbers"` // display artifact, NULL until settled
	ExecutedAt        *time.Time    `db:"executed_at"`
	CreatedAt         time.Time     `db:"created_at"`
}

// IsSettled returns true once the draw reached its terminal completed state
func (d *Draw) IsSettled() bool {
	return d.Status == DrawStatusCompleted
}

// IsCancelled returns true if the draw was cancelled before settlement
func (d *Draw) IsCancelled() bool {
	return d.Status == DrawStatusCancelled
}

// CanSettle reports whether settlement preconditions hold
func (d *Draw) CanSettle() bool {
	return d.Status == DrawStatusScheduled || d.Status == DrawStatusActive
}

// IsDue returns true if the draw has reached its resolution point
func (d *Draw) IsDue(now time.Time) bool {
	return !d.DrawDate.After(now)
}

// Complete marks the draw settled with its display winning numbers
func (d *Draw) Complete(winningNumbers string, now time.Time) {
	d.Status = DrawStatusCompleted
	d.WinningNumbers = &winningNumbers
	d.ExecutedAt = &now
}
