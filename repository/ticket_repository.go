package repository

import (
	"context"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(q Queryable) *TicketRepository {
	return &TicketRepository{q: q}
}

const ticketColumns = `id, draw_id, user_id, serial_number, numbers, price,
	is_free, is_winner, prize_amount, purchased_at`

// CreateBatch inserts tickets in a single batch
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `
		INSERT INTO tickets (draw_id, user_id, serial_number, numbers, price, is_free)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, purchased_at
	`
	for _, t := range tickets {
		err := r.q.QueryRow(ctx, query,
			t.DrawID, t.UserID, t.SerialNumber, t.Numbers, t.Price, t.IsFree,
		).Scan(&t.ID, &t.PurchasedAt)
		if err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
	}
	return nil
}

// GetByDraw returns every ticket sold into a draw
func (r *TicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE draw_id = $1 ORDER BY id`, ticketColumns)
	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var result []*entities.Ticket
	for rows.Next() {
		t, err := r.scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// CountByDraw returns the number of tickets sold into a draw
func (r *TicketRepository) CountByDraw(ctx context.Context, drawID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE draw_id = $1`, drawID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// MarkWinner records the settlement outcome on a ticket
func (r *TicketRepository) MarkWinner(ctx context.Context, ticketID int64, prizeAmount int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE tickets SET is_winner = TRUE, prize_amount = $2 WHERE id = $1`,
		ticketID, prizeAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to mark winning ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found", ticketID)
	}
	return nil
}

func (r *TicketRepository) scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var t entities.Ticket
	err := row.Scan(
		&t.ID,
		&t.DrawID,
		&t.UserID,
		&t.SerialNumber,
		&t.Numbers,
		&t.Price,
		&t.IsFree,
		&t.IsWinner,
		&t.PrizeAmount,
		&t.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
