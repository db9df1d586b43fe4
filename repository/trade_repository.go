package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TradeRepository implements binary trade data access
type TradeRepository struct {
	q Queryable
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(q Queryable) *TradeRepository {
	return &TradeRepository{q: q}
}

const tradeColumns = `id, user_id, instrument_id, symbol, direction, stake, entry_price,
	exit_price, duration_seconds, entered_at, expires_at, status, payout, settled_at, created_at`

// Create inserts a new active trade
func (r *TradeRepository) Create(ctx context.Context, trade *entities.BinaryTrade) error {
	query := `
		INSERT INTO binary_trades (user_id, instrument_id, symbol, direction, stake,
		                           entry_price, duration_seconds, entered_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		trade.UserID,
		trade.InstrumentID,
		trade.Symbol,
		trade.Direction,
		trade.Stake,
		trade.EntryPrice,
		int64(trade.Duration.Seconds()),
		trade.EnteredAt,
		trade.ExpiresAt,
		trade.Status,
	).Scan(&trade.ID, &trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade
func (r *TradeRepository) GetByID(ctx context.Context, id int64) (*entities.BinaryTrade, error) {
	query := fmt.Sprintf(`SELECT %s FROM binary_trades WHERE id = $1`, tradeColumns)
	return r.scanTrade(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a trade with a row lock
func (r *TradeRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.BinaryTrade, error) {
	query := fmt.Sprintf(`SELECT %s FROM binary_trades WHERE id = $1 FOR UPDATE`, tradeColumns)
	return r.scanTrade(r.q.QueryRow(ctx, query, id))
}

// GetExpiredActive returns active trades past their expiry timestamp
func (r *TradeRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.BinaryTrade, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM binary_trades
		WHERE status = 'active' AND expires_at <= $1
		ORDER BY expires_at
	`, tradeColumns)
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired trades: %w", err)
	}
	defer rows.Close()

	var result []*entities.BinaryTrade
	for rows.Next() {
		t, err := r.scanTradeRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update persists trade status, exit price, payout and settlement time
func (r *TradeRepository) Update(ctx context.Context, trade *entities.BinaryTrade) error {
	query := `
		UPDATE binary_trades
		SET status = $2, exit_price = $3, payout = $4, settled_at = $5
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		trade.ID, trade.Status, trade.ExitPrice, trade.Payout, trade.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %d not found", trade.ID)
	}
	return nil
}

func (r *TradeRepository) scanTrade(row pgx.Row) (*entities.BinaryTrade, error) {
	trade, err := r.scanTradeRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return trade, err
}

func (r *TradeRepository) scanTradeRow(row pgx.Row) (*entities.BinaryTrade, error) {
	var t entities.BinaryTrade
	var durationSeconds int64
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.InstrumentID,
		&t.Symbol,
		&t.Direction,
		&t.Stake,
		&t.EntryPrice,
		&t.ExitPrice,
		&durationSeconds,
		&t.EnteredAt,
		&t.ExpiresAt,
		&t.Status,
		&t.Payout,
		&t.SettledAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Duration = time.Duration(durationSeconds) * time.Second
	return &t, nil
}
