package repository

import (
	"context"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DrawWinnerRepository implements draw winner data access
type DrawWinnerRepository struct {
	q Queryable
}

// NewDrawWinnerRepository creates a new draw winner repository
func NewDrawWinnerRepository(q Queryable) *DrawWinnerRepository {
	return &DrawWinnerRepository{q: q}
}

const drawWinnerColumns = `id, draw_id, ticket_id, user_id, tier, amount,
	description, display_only, distributed, distributed_at, created_at`

// CreateBatch writes a draw's full winner set
func (r *DrawWinnerRepository) CreateBatch(ctx context.Context, winners []*entities.DrawWinner) error {
	query := `
		INSERT INTO draw_winners (draw_id, ticket_id, user_id, tier, amount,
		                          description, display_only, distributed, distributed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	for _, w := range winners {
		err := r.q.QueryRow(ctx, query,
			w.DrawID, w.TicketID, w.UserID, w.Tier, w.Amount,
			w.Description, w.DisplayOnly, w.Distributed, w.DistributedAt,
		).Scan(&w.ID, &w.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create draw winner: %w", err)
		}
	}
	return nil
}

// GetByDraw returns the winner set for a draw
func (r *DrawWinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.DrawWinner, error) {
	query := fmt.Sprintf(`SELECT %s FROM draw_winners WHERE draw_id = $1 ORDER BY id`, drawWinnerColumns)
	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw winners: %w", err)
	}
	defer rows.Close()

	var result []*entities.DrawWinner
	for rows.Next() {
		w, err := r.scanWinner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (r *DrawWinnerRepository) scanWinner(row pgx.Row) (*entities.DrawWinner, error) {
	var w entities.DrawWinner
	err := row.Scan(
		&w.ID,
		&w.DrawID,
		&w.TicketID,
		&w.UserID,
		&w.Tier,
		&w.Amount,
		&w.Description,
		&w.DisplayOnly,
		&w.Distributed,
		&w.DistributedAt,
		&w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
