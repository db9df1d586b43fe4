package entities

import "time"

// DrawFrequency identifies the scheduling calendar for a lottery type
type DrawFrequency string

const (
	DrawFrequencyDaily   DrawFrequency = "daily"
	DrawFrequencyWeekly  DrawFrequency = "weekly"
	DrawFrequencyMonthly DrawFrequency = "monthly"
)

// LotteryType is admin-managed reference data for one lottery product.
type LotteryType struct {
	ID             int64         `db:"id"`
	Code           string        `db:"code"`
	Name           string        `db:"name"`
	Frequency      DrawFrequency `db:"frequency"`
	TicketPrice    int64         `db:"ticket_price"` // cents
	FeePercent     int64         `db:"fee_percent"`  // platform share, 0-100
	NumbersPerLine int           `db:"numbers_per_line"`
	MaxNumber      int           `db:"max_number"`
	Enabled        bool          `db:"enabled"`
	CreatedAt      time.Time     `db:"created_at"`
}

// DistributablePool returns the winner share of a total pool after the
// platform fee.
func (lt *LotteryType) DistributablePool(totalPool int64) int64 {
	return totalPool - totalPool*lt.FeePercent/100
}
