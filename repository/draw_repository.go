package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(q Queryable) *DrawRepository {
	return &DrawRepository{q: q}
}

const drawColumns = `id, lottery_type_id, frequency, draw_date, status, total_pool,
	platform_fee, distributable_pool, tickets_sold, winning_numbers, executed_at, created_at`

// Create inserts a new scheduled draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (lottery_type_id, frequency, draw_date, status, total_pool,
		                   platform_fee, distributable_pool, tickets_sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		draw.LotteryTypeID,
		draw.Frequency,
		draw.DrawDate,
		draw.Status,
		draw.TotalPool,
		draw.PlatformFee,
		draw.DistributablePool,
		draw.TicketsSold,
	).Scan(&draw.ID, &draw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

// GetByID retrieves a draw
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	query := fmt.Sprintf(`SELECT %s FROM draws WHERE id = $1`, drawColumns)
	return r.scanDraw(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a draw with a row lock, so the settlement
// status precondition and the status write share one transaction.
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	query := fmt.Sprintf(`SELECT %s FROM draws WHERE id = $1 FOR UPDATE`, drawColumns)
	return r.scanDraw(r.q.QueryRow(ctx, query, id))
}

// GetDueDraws returns scheduled draws whose draw date has passed
func (r *DrawRepository) GetDueDraws(ctx context.Context, now time.Time) ([]*entities.Draw, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM draws
		WHERE status IN ('scheduled', 'active') AND draw_date <= $1
		ORDER BY draw_date
	`, drawColumns)
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due draws: %w", err)
	}
	defer rows.Close()

	var result []*entities.Draw
	for rows.Next() {
		draw, err := r.scanDrawRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, draw)
	}
	return result, rows.Err()
}

// HasUpcoming reports whether a future scheduled draw exists for a type
func (r *DrawRepository) HasUpcoming(ctx context.Context, lotteryTypeID int64, after time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM draws
			WHERE lottery_type_id = $1 AND status IN ('scheduled', 'active') AND draw_date > $2
		)
	`
	var exists bool
	if err := r.q.QueryRow(ctx, query, lotteryTypeID, after).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check upcoming draws: %w", err)
	}
	return exists, nil
}

// Update persists draw status, pools and winning numbers
func (r *DrawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	query := `
		UPDATE draws
		SET status = $2, total_pool = $3, platform_fee = $4, distributable_pool = $5,
		    tickets_sold = $6, winning_numbers = $7, executed_at = $8
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		draw.ID,
		draw.Status,
		draw.TotalPool,
		draw.PlatformFee,
		draw.DistributablePool,
		draw.TicketsSold,
		draw.WinningNumbers,
		draw.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update draw: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found", draw.ID)
	}
	return nil
}

func (r *DrawRepository) scanDraw(row pgx.Row) (*entities.Draw, error) {
	draw, err := r.scanDrawRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return draw, err
}

func (r *DrawRepository) scanDrawRow(row pgx.Row) (*entities.Draw, error) {
	var d entities.Draw
	err := row.Scan(
		&d.ID,
		&d.LotteryTypeID,
		&d.Frequency,
		&d.DrawDate,
		&d.Status,
		&d.TotalPool,
		&d.PlatformFee,
		&d.DistributablePool,
		&d.TicketsSold,
		&d.WinningNumbers,
		&d.ExecutedAt,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
