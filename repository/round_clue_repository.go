package repository

import (
	"context"
	"fmt"
	"time"

	"fortuna/domain/entities"
)

// RoundClueRepository implements staged reveal data access
type RoundClueRepository struct {
	q Queryable
}

// NewRoundClueRepository creates a new round clue repository
func NewRoundClueRepository(q Queryable) *RoundClueRepository {
	return &RoundClueRepository{q: q}
}

// CreateBatch inserts the clue schedule for a round
func (r *RoundClueRepository) CreateBatch(ctx context.Context, clues []*entities.RoundClue) error {
	query := `
		INSERT INTO round_clues (round_id, sequence, text, reveal_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, c := range clues {
		err := r.q.QueryRow(ctx, query, c.RoundID, c.Sequence, c.Text, c.RevealAt).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("failed to create round clue: %w", err)
		}
	}
	return nil
}

// GetDue returns unrevealed clues whose reveal time has passed
func (r *RoundClueRepository) GetDue(ctx context.Context, now time.Time) ([]*entities.RoundClue, error) {
	query := `
		SELECT id, round_id, sequence, text, reveal_at, revealed_at
		FROM round_clues
		WHERE revealed_at IS NULL AND reveal_at <= $1
		ORDER BY round_id, sequence
	`
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due clues: %w", err)
	}
	defer rows.Close()

	var result []*entities.RoundClue
	for rows.Next() {
		var c entities.RoundClue
		err := rows.Scan(&c.ID, &c.RoundID, &c.Sequence, &c.Text, &c.RevealAt, &c.RevealedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// Update persists the revealed timestamp
func (r *RoundClueRepository) Update(ctx context.Context, clue *entities.RoundClue) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE round_clues SET revealed_at = $2 WHERE id = $1`,
		clue.ID, clue.RevealedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update round clue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round clue %d not found", clue.ID)
	}
	return nil
}
