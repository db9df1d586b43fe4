package repository

import (
	"context"
	"errors"
	"fmt"

	"fortuna/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements wallet data access
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(q Queryable) *WalletRepository {
	return &WalletRepository{q: q}
}

const walletColumns = `id, user_id, balance, bonus_balance, total_deposited,
	total_withdrawn, total_winnings, total_bonuses, created_at, updated_at`

// GetByUserID retrieves the wallet for a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := fmt.Sprintf(`SELECT %s FROM wallets WHERE user_id = $1`, walletColumns)
	return r.scanWallet(r.q.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate retrieves the wallet with a row lock for use inside a
// settlement transaction
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := fmt.Sprintf(`SELECT %s FROM wallets WHERE user_id = $1 FOR UPDATE`, walletColumns)
	return r.scanWallet(r.q.QueryRow(ctx, query, userID))
}

// UpdateBalances persists the wallet's balance and lifetime-total fields
func (r *WalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $2, bonus_balance = $3, total_deposited = $4,
		    total_withdrawn = $5, total_winnings = $6, total_bonuses = $7,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		wallet.ID,
		wallet.Balance,
		wallet.BonusBalance,
		wallet.TotalDeposited,
		wallet.TotalWithdrawn,
		wallet.TotalWinnings,
		wallet.TotalBonuses,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d not found", wallet.ID)
	}
	return nil
}

// Create inserts a wallet for a user. Used by tests and onboarding flows.
func (r *WalletRepository) Create(ctx context.Context, userID, initialBalance int64) (*entities.Wallet, error) {
	query := fmt.Sprintf(`
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		RETURNING %s
	`, walletColumns)
	wallet, err := r.scanWallet(r.q.QueryRow(ctx, query, userID, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (r *WalletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var w entities.Wallet
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.BonusBalance,
		&w.TotalDeposited,
		&w.TotalWithdrawn,
		&w.TotalWinnings,
		&w.TotalBonuses,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}
	return &w, nil
}
