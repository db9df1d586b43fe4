package repository

import (
	"context"
	"errors"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// InstrumentRepository implements instrument reference data access
type InstrumentRepository struct {
	q Queryable
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(q Queryable) *InstrumentRepository {
	return &InstrumentRepository{q: q}
}

const instrumentColumns = `id, symbol, name, payout_multiplier, min_stake, max_stake, enabled, created_at`

// GetByID retrieves an instrument
func (r *InstrumentRepository) GetByID(ctx context.Context, id int64) (*entities.Instrument, error) {
	query := fmt.Sprintf(`SELECT %s FROM instruments WHERE id = $1`, instrumentColumns)
	return r.scanInstrument(r.q.QueryRow(ctx, query, id))
}

// GetBySymbol retrieves an instrument by its symbol
func (r *InstrumentRepository) GetBySymbol(ctx context.Context, symbol string) (*entities.Instrument, error) {
	query := fmt.Sprintf(`SELECT %s FROM instruments WHERE symbol = $1`, instrumentColumns)
	return r.scanInstrument(r.q.QueryRow(ctx, query, symbol))
}

func (r *InstrumentRepository) scanInstrument(row pgx.Row) (*entities.Instrument, error) {
	var i entities.Instrument
	err := row.Scan(
		&i.ID,
		&i.Symbol,
		&i.Name,
		&i.PayoutMultiplier,
		&i.MinStake,
		&i.MaxStake,
		&i.Enabled,
		&i.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan instrument: %w", err)
	}
	return &i, nil
}
