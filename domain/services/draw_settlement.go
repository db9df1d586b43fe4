package services

import (
	"context"
	"fmt"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/interfaces"
	"fortuna/domain/utils"

	log "github.com/sirupsen/logrus"
)

// drawSettlementService commits a draw's outcome to the ledger. All its
// repositories must be bound to the same unit of work: every write here is
// part of one atomic settlement transaction.
type drawSettlementService struct {
	drawRepo        interfaces.DrawRepository
	ticketRepo      interfaces.TicketRepository
	winnerRepo      interfaces.DrawWinnerRepository
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	lotteryTypeRepo interfaces.LotteryTypeRepository
	rng             Rand
}

// NewDrawSettlementService creates a new draw settlement service
func NewDrawSettlementService(
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	winnerRepo interfaces.DrawWinnerRepository,
	walletRepo interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	lotteryTypeRepo interfaces.LotteryTypeRepository,
	rng Rand,
) interfaces.DrawSettlementService {
	return &drawSettlementService{
		drawRepo:        drawRepo,
		ticketRepo:      ticketRepo,
		winnerRepo:      winnerRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		lotteryTypeRepo: lotteryTypeRepo,
		rng:             rng,
	}
}

// Settle selects winners for the draw and applies all money movement. The
// status precondition is checked under row lock so a duplicate trigger
// no-ops instead of double-paying.
func (s *drawSettlementService) Settle(ctx context.Context, drawID int64) (*interfaces.DrawSettlementResult, error) {
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, ErrNotFound)
	}
	if draw.IsCancelled() {
		return nil, fmt.Errorf("draw %d: %w", drawID, ErrCancelled)
	}
	if !draw.CanSettle() {
		return nil, fmt.Errorf("draw %d: %w", drawID, ErrAlreadySettled)
	}

	lotteryType, err := s.lotteryTypeRepo.GetByID(ctx, draw.LotteryTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery type: %w", err)
	}

	tickets, err := s.ticketRepo.GetByDraw(ctx, draw.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	eligible := make([]EligibleTicket, 0, len(tickets))
	for _, t := range tickets {
		eligible = append(eligible, EligibleTicket{TicketID: t.ID, UserID: t.UserID})
	}

	allocations, err := Allocate(TierRulesFor(draw.Frequency), draw.DistributablePool, eligible, s.rng)
	if err != nil {
		return nil, fmt.Errorf("prize allocation failed: %w", err)
	}

	winningNumbers, err := GenerateWinningNumbers(s.rng, lotteryType.NumbersPerLine, lotteryType.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate winning numbers: %w", err)
	}

	now := time.Now().UTC()
	winners := make([]*entities.DrawWinner, 0, len(allocations))
	var totalPaid int64

	for _, alloc := range allocations {
		winner := &entities.DrawWinner{
			DrawID:      draw.ID,
			TicketID:    alloc.TicketID,
			UserID:      alloc.UserID,
			Tier:        alloc.Tier,
			Amount:      alloc.Amount,
			Description: fmt.Sprintf("%s (%s)", alloc.Description, utils.FormatCents(alloc.Amount)),
			DisplayOnly: alloc.DisplayOnly,
		}
		// Display-only rows are final on creation and move no money.
		winner.MarkDistributed(now)
		winners = append(winners, winner)

		if alloc.DisplayOnly {
			continue
		}

		if err := s.payWinner(ctx, draw, winner); err != nil {
			return nil, err
		}
		totalPaid += alloc.Amount
	}

	if err := s.winnerRepo.CreateBatch(ctx, winners); err != nil {
		return nil, fmt.Errorf("failed to create winner records: %w", err)
	}

	draw.Complete(winningNumbers, now)
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to complete draw: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":         draw.ID,
		"frequency":      draw.Frequency,
		"winningNumbers": winningNumbers,
		"winnerCount":    len(winners),
		"totalPaid":      totalPaid,
		"pool":           draw.DistributablePool,
	}).Info("Draw settled")

	return &interfaces.DrawSettlementResult{
		Draw:           draw,
		Winners:        winners,
		WinningNumbers: winningNumbers,
		TotalPaid:      totalPaid,
	}, nil
}

// payWinner credits one real winner: wallet balance, ledger entry and ticket
// winner fields, all within the surrounding transaction.
func (s *drawSettlementService) payWinner(ctx context.Context, draw *entities.Draw, winner *entities.DrawWinner) error {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, *winner.UserID)
	if err != nil {
		return fmt.Errorf("failed to lock winner wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet for user %d: %w", *winner.UserID, ErrNotFound)
	}

	balanceBefore := wallet.Balance
	if err := wallet.Credit(winner.Amount, true); err != nil {
		return fmt.Errorf("failed to credit winner: %w", err)
	}
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update winner balance: %w", err)
	}

	tx := &entities.Transaction{
		WalletID:      wallet.ID,
		Type:          entities.TransactionTypePrizeWin,
		Amount:        winner.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		Description:   fmt.Sprintf("Draw #%d %s", draw.ID, winner.Description),
		Status:        entities.TransactionStatusCompleted,
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid prize transaction: %w", err)
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record prize transaction: %w", err)
	}

	if winner.TicketID != nil {
		if err := s.ticketRepo.MarkWinner(ctx, *winner.TicketID, winner.Amount); err != nil {
			return fmt.Errorf("failed to mark winning ticket: %w", err)
		}
	}
	return nil
}
