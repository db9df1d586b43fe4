package repository

import (
	"context"
	"fmt"

	"fortuna/domain/entities"
)

// TransactionRepository implements the append-only wallet ledger
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(q Queryable) *TransactionRepository {
	return &TransactionRepository{q: q}
}

// Create appends a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (wallet_id, type, amount, balance_before, balance_after, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		tx.WalletID,
		tx.Type,
		tx.Amount,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.Description,
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByWallet returns recent ledger entries for a wallet, newest first
func (r *TransactionRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, wallet_id, type, amount, balance_before, balance_after, description, status, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []*entities.Transaction
	for rows.Next() {
		var t entities.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&t.Type,
			&t.Amount,
			&t.BalanceBefore,
			&t.BalanceAfter,
			&t.Description,
			&t.Status,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}
