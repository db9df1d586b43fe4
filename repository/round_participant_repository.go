package repository

import (
	"context"
	"errors"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// RoundParticipantRepository implements round stake data access
type RoundParticipantRepository struct {
	q Queryable
}

// NewRoundParticipantRepository creates a new round participant repository
func NewRoundParticipantRepository(q Queryable) *RoundParticipantRepository {
	return &RoundParticipantRepository{q: q}
}

const roundParticipantColumns = `id, round_id, user_id, stake, commitment, won,
	refunded_at, unlock_requested_at, released_at, created_at`

// Create inserts a participant with their locked stake
func (r *RoundParticipantRepository) Create(ctx context.Context, p *entities.RoundParticipant) error {
	query := `
		INSERT INTO round_participants (round_id, user_id, stake, commitment, won,
		                                refunded_at, unlock_requested_at, released_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		p.RoundID, p.UserID, p.Stake, p.Commitment, p.Won,
		p.RefundedAt, p.UnlockRequestedAt, p.ReleasedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round participant: %w", err)
	}
	return nil
}

// GetByRound returns all participants of a round
func (r *RoundParticipantRepository) GetByRound(ctx context.Context, roundID int64) ([]*entities.RoundParticipant, error) {
	query := fmt.Sprintf(`SELECT %s FROM round_participants WHERE round_id = $1 ORDER BY id`, roundParticipantColumns)
	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round participants: %w", err)
	}
	defer rows.Close()

	var result []*entities.RoundParticipant
	for rows.Next() {
		p, err := r.scanParticipantRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetByIDForUpdate retrieves a participant with a row lock
func (r *RoundParticipantRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.RoundParticipant, error) {
	query := fmt.Sprintf(`SELECT %s FROM round_participants WHERE id = $1 FOR UPDATE`, roundParticipantColumns)
	p, err := r.scanParticipantRow(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Update persists winner/refund/release fields
func (r *RoundParticipantRepository) Update(ctx context.Context, p *entities.RoundParticipant) error {
	query := `
		UPDATE round_participants
		SET won = $2, refunded_at = $3, unlock_requested_at = $4, released_at = $5
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Won, p.RefundedAt, p.UnlockRequestedAt, p.ReleasedAt)
	if err != nil {
		return fmt.Errorf("failed to update round participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round participant %d not found", p.ID)
	}
	return nil
}

func (r *RoundParticipantRepository) scanParticipantRow(row pgx.Row) (*entities.RoundParticipant, error) {
	var p entities.RoundParticipant
	err := row.Scan(
		&p.ID,
		&p.RoundID,
		&p.UserID,
		&p.Stake,
		&p.Commitment,
		&p.Won,
		&p.RefundedAt,
		&p.UnlockRequestedAt,
		&p.ReleasedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
