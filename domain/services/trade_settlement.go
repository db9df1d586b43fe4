package services

import (
	"context"
	"fmt"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// tradeSettlementService resolves expired binary trades. Repositories must
// share one unit of work; status updates, wallet credits, ledger entries and
// audit rows commit or roll back together.
type tradeSettlementService struct {
	tradeRepo       interfaces.TradeRepository
	auditRepo       interfaces.TradeAuditRepository
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	instrumentRepo  interfaces.InstrumentRepository
}

// NewTradeSettlementService creates a new trade settlement service
func NewTradeSettlementService(
	tradeRepo interfaces.TradeRepository,
	auditRepo interfaces.TradeAuditRepository,
	walletRepo interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	instrumentRepo interfaces.InstrumentRepository,
) interfaces.TradeSettlementService {
	return &tradeSettlementService{
		tradeRepo:       tradeRepo,
		auditRepo:       auditRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		instrumentRepo:  instrumentRepo,
	}
}

// Settle applies the direction decision against the resolving exit price.
// won iff (up and exit > entry) or (down and exit < entry); ties lose.
func (s *tradeSettlementService) Settle(ctx context.Context, tradeID int64, exitPrice decimal.Decimal) (*interfaces.TradeSettlementResult, error) {
	trade, err := s.lockActiveTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsExpired(time.Now().UTC()) {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ErrNotDue)
	}

	instrument, err := s.instrumentRepo.GetByID(ctx, trade.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}

	now := time.Now().UTC()
	outcome := trade.Outcome(exitPrice)

	var payout int64
	if outcome == entities.TradeStatusWon {
		payout = trade.ComputePayout(instrument.PayoutMultiplier)
	}
	trade.Settle(outcome, exitPrice, payout, now)

	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	if outcome == entities.TradeStatusWon {
		if err := s.payTrade(ctx, trade); err != nil {
			return nil, err
		}
	}

	audit := entities.NewSettlementAudit(trade, exitPrice)
	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	log.WithFields(log.Fields{
		"tradeID":    trade.ID,
		"symbol":     trade.Symbol,
		"direction":  trade.Direction,
		"entryPrice": trade.EntryPrice,
		"exitPrice":  exitPrice,
		"status":     trade.Status,
		"payout":     payout,
	}).Info("Trade settled")

	return &interfaces.TradeSettlementResult{Trade: trade, Audit: audit}, nil
}

// Fail moves a trade to the terminal error status when no resolving price is
// available. No payout, one audit entry, and the poll loop is never blocked
// by an unresolvable trade again.
func (s *tradeSettlementService) Fail(ctx context.Context, tradeID int64, reason string) (*interfaces.TradeSettlementResult, error) {
	trade, err := s.lockActiveTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	trade.Fail(time.Now().UTC())
	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	audit := entities.NewFailureAudit(trade, reason)
	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	log.WithFields(log.Fields{
		"tradeID": trade.ID,
		"symbol":  trade.Symbol,
		"reason":  reason,
	}).Warn("Trade settlement failed, marked as error")

	return &interfaces.TradeSettlementResult{Trade: trade, Audit: audit}, nil
}

// lockActiveTrade loads the trade under row lock and enforces the
// single-settlement precondition.
func (s *tradeSettlementService) lockActiveTrade(ctx context.Context, tradeID int64) (*entities.BinaryTrade, error) {
	trade, err := s.tradeRepo.GetByIDForUpdate(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock trade: %w", err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ErrNotFound)
	}
	if !trade.IsActive() {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ErrAlreadySettled)
	}
	return trade, nil
}

// payTrade credits the won payout and writes the paired ledger entry
func (s *tradeSettlementService) payTrade(ctx context.Context, trade *entities.BinaryTrade) error {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, trade.UserID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet for user %d: %w", trade.UserID, ErrNotFound)
	}

	balanceBefore := wallet.Balance
	if err := wallet.Credit(trade.Payout, true); err != nil {
		return fmt.Errorf("failed to credit payout: %w", err)
	}
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	tx := &entities.Transaction{
		WalletID:      wallet.ID,
		Type:          entities.TransactionTypeTradePayout,
		Amount:        trade.Payout,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		Description:   fmt.Sprintf("Trade #%d %s %s payout", trade.ID, trade.Symbol, trade.Direction),
		Status:        entities.TransactionStatusCompleted,
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid payout transaction: %w", err)
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record payout transaction: %w", err)
	}
	return nil
}
