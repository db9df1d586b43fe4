package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements round data access
type RoundRepository struct {
	q Queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(q Queryable) *RoundRepository {
	return &RoundRepository{q: q}
}

const roundColumns = `id, kind, status, stake_amount, prize_amount, pool,
	secret_cipher, registration_end, ends_at, completed_at, created_at`

// Create inserts a new round
func (r *RoundRepository) Create(ctx context.Context, round *entities.Round) error {
	query := `
		INSERT INTO rounds (kind, status, stake_amount, prize_amount, pool,
		                    secret_cipher, registration_end, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		round.Kind,
		round.Status,
		round.StakeAmount,
		round.PrizeAmount,
		round.Pool,
		round.SecretCipher,
		round.RegistrationEnd,
		round.EndsAt,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// GetByID retrieves a round
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE id = $1`, roundColumns)
	return r.scanRound(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a round with a row lock
func (r *RoundRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE id = $1 FOR UPDATE`, roundColumns)
	return r.scanRound(r.q.QueryRow(ctx, query, id))
}

// GetDueRounds returns active rounds past their end time
func (r *RoundRepository) GetDueRounds(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rounds
		WHERE status = 'active' AND ends_at <= $1
		ORDER BY ends_at
	`, roundColumns)
	return r.queryRounds(ctx, query, now)
}

// GetRegistrationExpired returns registration rounds whose window closed
func (r *RoundRepository) GetRegistrationExpired(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rounds
		WHERE status = 'registration' AND registration_end <= $1
		ORDER BY registration_end
	`, roundColumns)
	return r.queryRounds(ctx, query, now)
}

// GetCurrentByKind returns the non-terminal round of a kind, if any
func (r *RoundRepository) GetCurrentByKind(ctx context.Context, kind entities.RoundKind) (*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rounds
		WHERE kind = $1 AND status IN ('registration', 'active')
		ORDER BY created_at DESC
		LIMIT 1
	`, roundColumns)
	return r.scanRound(r.q.QueryRow(ctx, query, kind))
}

// Update persists round status and pool
func (r *RoundRepository) Update(ctx context.Context, round *entities.Round) error {
	query := `
		UPDATE rounds
		SET status = $2, pool = $3, completed_at = $4
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, round.ID, round.Status, round.Pool, round.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %d not found", round.ID)
	}
	return nil
}

func (r *RoundRepository) queryRounds(ctx context.Context, query string, args ...any) ([]*entities.Round, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var result []*entities.Round
	for rows.Next() {
		round, err := r.scanRoundRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, round)
	}
	return result, rows.Err()
}

func (r *RoundRepository) scanRound(row pgx.Row) (*entities.Round, error) {
	round, err := r.scanRoundRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return round, err
}

func (r *RoundRepository) scanRoundRow(row pgx.Row) (*entities.Round, error) {
	var rnd entities.Round
	err := row.Scan(
		&rnd.ID,
		&rnd.Kind,
		&rnd.Status,
		&rnd.StakeAmount,
		&rnd.PrizeAmount,
		&rnd.Pool,
		&rnd.SecretCipher,
		&rnd.RegistrationEnd,
		&rnd.EndsAt,
		&rnd.CompletedAt,
		&rnd.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rnd, nil
}
