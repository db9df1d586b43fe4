package entities

import (
	"errors"
	"time"
)

// TransactionType represents the reason for a balance change
type TransactionType string

// All transaction types written by the engine
const (
	// Lottery transactions
	TransactionTypeTicketPurchase TransactionType = "ticket_purchase"
	TransactionTypePrizeWin       TransactionType = "prize_win"

	// Binary option transactions
	TransactionTypeTradeStake  TransactionType = "trade_stake"
	TransactionTypeTradePayout TransactionType = "trade_payout"

	// Round (mystery-search / lock-until-win) transactions
	TransactionTypeRoundStake  TransactionType = "round_stake"
	TransactionTypeRoundPrize  TransactionType = "round_prize"
	TransactionTypeLockRefund  TransactionType = "lock_refund"
	TransactionTypeLockRelease TransactionType = "lock_release"

	// External flows recorded by excluded collaborators
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeBonus      TransactionType = "bonus"
)

// TransactionStatus is the lifecycle state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsCredit returns true if the transaction type increases a wallet balance
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypePrizeWin ||
		tt == TransactionTypeTradePayout ||
		tt == TransactionTypeRoundPrize ||
		tt == TransactionTypeLockRefund ||
		tt == TransactionTypeLockRelease ||
		tt == TransactionTypeDeposit ||
		tt == TransactionTypeBonus
}

// IsWinType returns true if the transaction type represents winnings
func (tt TransactionType) IsWinType() bool {
	return tt == TransactionTypePrizeWin ||
		tt == TransactionTypeTradePayout ||
		tt == TransactionTypeRoundPrize
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// Transaction is an append-only ledger entry tied to a wallet. Every balance
// mutation made by the settlement executor is paired with exactly one of
// these in the same database transaction.
type Transaction struct {
	ID            int64             `db:"id"`
	WalletID      int64             `db:"wallet_id"`
	Type          TransactionType   `db:"type"`
	Amount        int64             `db:"amount"` // signed cents
	BalanceBefore int64             `db:"balance_before"`
	BalanceAfter  int64             `db:"balance_after"`
	Description   string            `db:"description"`
	Status        TransactionStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
}

// Validate performs basic consistency checks before the row is written
func (t *Transaction) Validate() error {
	if t.Amount == 0 {
		return errors.New("transaction amount cannot be zero")
	}
	if t.BalanceAfter != t.BalanceBefore+t.Amount {
		return errors.New("balance calculation is inconsistent")
	}
	if t.Type.IsCredit() && t.Amount < 0 {
		return errors.New("credit transaction with negative amount")
	}
	return nil
}
