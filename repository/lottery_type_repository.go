package repository

import (
	"context"
	"errors"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// LotteryTypeRepository implements read access to lottery reference data
type LotteryTypeRepository struct {
	q Queryable
}

// NewLotteryTypeRepository creates a new lottery type repository
func NewLotteryTypeRepository(q Queryable) *LotteryTypeRepository {
	return &LotteryTypeRepository{q: q}
}

const lotteryTypeColumns = `id, code, name, frequency, ticket_price, fee_percent,
	numbers_per_line, max_number, enabled, created_at`

// GetByID retrieves a lottery type
func (r *LotteryTypeRepository) GetByID(ctx context.Context, id int64) (*entities.LotteryType, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_types WHERE id = $1`, lotteryTypeColumns)
	return r.scan(r.q.QueryRow(ctx, query, id))
}

// GetEnabled returns all enabled lottery types
func (r *LotteryTypeRepository) GetEnabled(ctx context.Context) ([]*entities.LotteryType, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_types WHERE enabled ORDER BY id`, lotteryTypeColumns)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lottery types: %w", err)
	}
	defer rows.Close()

	var result []*entities.LotteryType
	for rows.Next() {
		lt, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lt)
	}
	return result, rows.Err()
}

func (r *LotteryTypeRepository) scan(row pgx.Row) (*entities.LotteryType, error) {
	lt, err := r.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lt, err
}

func (r *LotteryTypeRepository) scanRow(row pgx.Row) (*entities.LotteryType, error) {
	var lt entities.LotteryType
	err := row.Scan(
		&lt.ID,
		&lt.Code,
		&lt.Name,
		&lt.Frequency,
		&lt.TicketPrice,
		&lt.FeePercent,
		&lt.NumbersPerLine,
		&lt.MaxNumber,
		&lt.Enabled,
		&lt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lt, nil
}
