package entities

import (
	"fmt"
	"time"
)

// Wallet holds a user's balances, in cents. Balances are only mutated through
// the settlement path or the external deposit/withdrawal flows.
type Wallet struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Balance        int64     `db:"balance"`
	BonusBalance   int64     `db:"bonus_balance"`
	TotalDeposited int64     `db:"total_deposited"`
	TotalWithdrawn int64     `db:"total_withdrawn"`
	TotalWinnings  int64     `db:"total_winnings"`
	TotalBonuses   int64     `db:"total_bonuses"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// CanDebit reports whether the wallet can cover a debit of amount cents.
func (w *Wallet) CanDebit(amount int64) bool {
	return amount >= 0 && w.Balance >= amount
}

// Credit increases the available balance. Winnings also accumulate into the
// lifetime total so the ledger and the wallet stay reconcilable.
func (w *Wallet) Credit(amount int64, winnings bool) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be non-negative, got %d", amount)
	}
	w.Balance += amount
	if winnings {
		w.TotalWinnings += amount
	}
	return nil
}

// Debit decreases the available balance. The engine only debits amounts it
// has already verified as held, so overdraw is a programming error.
func (w *Wallet) Debit(amount int64) error {
	if !w.CanDebit(amount) {
		return fmt.Errorf("insufficient balance: have %d, need %d", w.Balance, amount)
	}
	w.Balance -= amount
	return nil
}
