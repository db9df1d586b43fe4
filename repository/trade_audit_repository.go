package repository

import (
	"context"
	"fmt"

	"fortuna/domain/entities"
)

// TradeAuditRepository implements the append-only trade audit trail
type TradeAuditRepository struct {
	q Queryable
}

// NewTradeAuditRepository creates a new trade audit repository
func NewTradeAuditRepository(q Queryable) *TradeAuditRepository {
	return &TradeAuditRepository{q: q}
}

// Create appends an audit entry
func (r *TradeAuditRepository) Create(ctx context.Context, entry *entities.TradeAuditLog) error {
	query := `
		INSERT INTO trade_audit_logs (trade_id, event, detail, entry_price, exit_price, payout)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.TradeID, entry.Event, entry.Detail, entry.EntryPrice, entry.ExitPrice, entry.Payout,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade audit entry: %w", err)
	}
	return nil
}

// GetByTrade returns the audit trail for a trade
func (r *TradeAuditRepository) GetByTrade(ctx context.Context, tradeID int64) ([]*entities.TradeAuditLog, error) {
	query := `
		SELECT id, trade_id, event, detail, entry_price, exit_price, payout, created_at
		FROM trade_audit_logs
		WHERE trade_id = $1
		ORDER BY id
	`
	rows, err := r.q.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade audit trail: %w", err)
	}
	defer rows.Close()

	var result []*entities.TradeAuditLog
	for rows.Next() {
		var e entities.TradeAuditLog
		err := rows.Scan(
			&e.ID, &e.TradeID, &e.Event, &e.Detail, &e.EntryPrice, &e.ExitPrice, &e.Payout, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
