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

// registrationWindow is how long a freshly auto-started replacement round
// accepts participants.
const registrationWindow = 24 * time.Hour

// roundService drives the multi-day round lifecycle: staged reveals,
// completion settlement and replacement rounds. The winner prize is a
// house-funded liability; the pool only ever holds locked stakes, which are
// refunded, carried forward or released but never shrunk by a payout.
type roundService struct {
	roundRepo       interfaces.RoundRepository
	clueRepo        interfaces.RoundClueRepository
	participantRepo interfaces.RoundParticipantRepository
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	rng             Rand
}

// NewRoundService creates a new round lifecycle service
func NewRoundService(
	roundRepo interfaces.RoundRepository,
	clueRepo interfaces.RoundClueRepository,
	participantRepo interfaces.RoundParticipantRepository,
	walletRepo interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	rng Rand,
) interfaces.RoundService {
	return &roundService{
		roundRepo:       roundRepo,
		clueRepo:        clueRepo,
		participantRepo: participantRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		rng:             rng,
	}
}

// ActivateDueRounds moves rounds whose registration window closed into the
// active state.
func (s *roundService) ActivateDueRounds(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	rounds, err := s.roundRepo.GetRegistrationExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired registrations: %w", err)
	}

	var activated []*entities.Round
	for _, round := range rounds {
		round.Status = entities.RoundStatusActive
		if err := s.roundRepo.Update(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to activate round %d: %w", round.ID, err)
		}
		activated = append(activated, round)
	}
	return activated, nil
}

// RevealDueClues publishes staged clues whose reveal time has passed
func (s *roundService) RevealDueClues(ctx context.Context, now time.Time) ([]*entities.RoundClue, error) {
	clues, err := s.clueRepo.GetDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due clues: %w", err)
	}

	var revealed []*entities.RoundClue
	for _, clue := range clues {
		clue.Reveal(now)
		if err := s.clueRepo.Update(ctx, clue); err != nil {
			return nil, fmt.Errorf("failed to reveal clue %d: %w", clue.ID, err)
		}
		log.WithFields(log.Fields{
			"roundID":  clue.RoundID,
			"sequence": clue.Sequence,
		}).Info("Round clue revealed")
		revealed = append(revealed, clue)
	}
	return revealed, nil
}

// CompleteRound settles a due round as one atomic unit: crypto-random winner
// selection, house-funded prize plus stake return for the winner, refunds to
// refundable non-winners, and carry-forward stakes re-pooled into the
// auto-started replacement round.
func (s *roundService) CompleteRound(ctx context.Context, roundID int64) (*interfaces.RoundCompletionResult, error) {
	round, err := s.roundRepo.GetByIDForUpdate(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round %d: %w", roundID, ErrNotFound)
	}
	if round.Status == entities.RoundStatusCancelled {
		return nil, fmt.Errorf("round %d: %w", roundID, ErrCancelled)
	}
	if round.Status == entities.RoundStatusCompleted {
		return nil, fmt.Errorf("round %d: %w", roundID, ErrAlreadySettled)
	}
	if round.Status != entities.RoundStatusActive {
		return nil, fmt.Errorf("round %d is still in %s: %w", roundID, round.Status, ErrNotDue)
	}

	participants, err := s.participantRepo.GetByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	now := time.Now().UTC()
	result := &interfaces.RoundCompletionResult{Round: round}

	locked := make([]*entities.RoundParticipant, 0, len(participants))
	for _, p := range participants {
		if p.IsLocked() {
			locked = append(locked, p)
		}
	}

	var winner *entities.RoundParticipant
	if len(locked) > 0 {
		idx, err := s.rng.IntN(int64(len(locked)))
		if err != nil {
			return nil, fmt.Errorf("winner selection: %w", err)
		}
		winner = locked[idx]
	}

	var carriers []*entities.RoundParticipant
	for _, p := range locked {
		if p == winner {
			continue
		}
		switch p.Commitment {
		case entities.CommitmentRefundable:
			if err := s.refundStake(ctx, round, p, now); err != nil {
				return nil, err
			}
			result.RefundedCount++
		case entities.CommitmentCarryForward:
			carriers = append(carriers, p)
			result.CarriedPool += p.Stake
		}
	}

	if winner != nil {
		if err := s.payRoundWinner(ctx, round, winner, now); err != nil {
			return nil, err
		}
		result.Winner = winner
		result.PrizeAmount = round.PrizeAmount
	}

	round.Pool = 0
	round.Complete(now)
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to complete round: %w", err)
	}

	nextRound, err := s.startReplacementRound(ctx, round, carriers, now)
	if err != nil {
		return nil, err
	}
	result.NextRound = nextRound

	log.WithFields(log.Fields{
		"roundID":     round.ID,
		"kind":        round.Kind,
		"winner":      result.Winner != nil,
		"refunded":    result.RefundedCount,
		"carriedPool": result.CarriedPool,
		"nextRoundID": nextRound.ID,
	}).Info("Round completed")

	return result, nil
}

// RequestUnlock releases a carry-forward stake back to the wallet. Explicit
// user action, its own settlement unit.
func (s *roundService) RequestUnlock(ctx context.Context, participantID int64) error {
	p, err := s.participantRepo.GetByIDForUpdate(ctx, participantID)
	if err != nil {
		return fmt.Errorf("failed to lock participant: %w", err)
	}
	if p == nil {
		return fmt.Errorf("participant %d: %w", participantID, ErrNotFound)
	}
	if p.Commitment != entities.CommitmentCarryForward {
		return fmt.Errorf("participant %d stake is not carry-forward", participantID)
	}
	if !p.IsLocked() {
		return fmt.Errorf("participant %d: %w", participantID, ErrAlreadySettled)
	}

	round, err := s.roundRepo.GetByIDForUpdate(ctx, p.RoundID)
	if err != nil {
		return fmt.Errorf("failed to lock round: %w", err)
	}
	if round == nil {
		return fmt.Errorf("round %d: %w", p.RoundID, ErrNotFound)
	}

	now := time.Now().UTC()
	if err := s.creditStake(ctx, p, entities.TransactionTypeLockRelease,
		fmt.Sprintf("Round #%d stake unlock", round.ID)); err != nil {
		return err
	}

	p.UnlockRequestedAt = &now
	p.ReleasedAt = &now
	if err := s.participantRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}

	round.Pool -= p.Stake
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return fmt.Errorf("failed to update round pool: %w", err)
	}
	return nil
}

// refundStake returns a refundable non-winner's stake, leaving their net
// balance unchanged over the round.
func (s *roundService) refundStake(ctx context.Context, round *entities.Round, p *entities.RoundParticipant, now time.Time) error {
	if err := s.creditStake(ctx, p, entities.TransactionTypeLockRefund,
		fmt.Sprintf("Round #%d stake refund", round.ID)); err != nil {
		return err
	}
	p.RefundedAt = &now
	if err := s.participantRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update refunded participant: %w", err)
	}
	return nil
}

// payRoundWinner returns the winner's stake and credits the house-funded
// prize in a single wallet update with two ledger entries.
func (s *roundService) payRoundWinner(ctx context.Context, round *entities.Round, winner *entities.RoundParticipant, now time.Time) error {
	if err := s.creditStake(ctx, winner, entities.TransactionTypeLockRefund,
		fmt.Sprintf("Round #%d winning stake return", round.ID)); err != nil {
		return err
	}

	if round.PrizeAmount > 0 {
		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, winner.UserID)
		if err != nil {
			return fmt.Errorf("failed to lock winner wallet: %w", err)
		}
		balanceBefore := wallet.Balance
		if err := wallet.Credit(round.PrizeAmount, true); err != nil {
			return fmt.Errorf("failed to credit round prize: %w", err)
		}
		if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
			return fmt.Errorf("failed to update winner wallet: %w", err)
		}
		tx := &entities.Transaction{
			WalletID:      wallet.ID,
			Type:          entities.TransactionTypeRoundPrize,
			Amount:        round.PrizeAmount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  wallet.Balance,
			Description:   fmt.Sprintf("Round #%d prize (%s)", round.ID, utils.FormatCents(round.PrizeAmount)),
			Status:        entities.TransactionStatusCompleted,
		}
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid round prize transaction: %w", err)
		}
		if err := s.transactionRepo.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to record round prize: %w", err)
		}
	}

	winner.Won = true
	if err := s.participantRepo.Update(ctx, winner); err != nil {
		return fmt.Errorf("failed to update winner participant: %w", err)
	}
	return nil
}

// creditStake moves a locked stake back into the participant's wallet with
// its paired ledger entry.
func (s *roundService) creditStake(ctx context.Context, p *entities.RoundParticipant, txType entities.TransactionType, description string) error {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet for user %d: %w", p.UserID, ErrNotFound)
	}

	balanceBefore := wallet.Balance
	if err := wallet.Credit(p.Stake, false); err != nil {
		return fmt.Errorf("failed to credit stake: %w", err)
	}
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	tx := &entities.Transaction{
		WalletID:      wallet.ID,
		Type:          txType,
		Amount:        p.Stake,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		Description:   description,
		Status:        entities.TransactionStatusCompleted,
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid stake transaction: %w", err)
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record stake transaction: %w", err)
	}
	return nil
}

// startReplacementRound creates the follow-up round so the game stays
// continuously available, re-registering carry-forward participants with
// their stakes pooled in.
func (s *roundService) startReplacementRound(ctx context.Context, previous *entities.Round, carriers []*entities.RoundParticipant, now time.Time) (*entities.Round, error) {
	activeWindow := previous.EndsAt.Sub(previous.RegistrationEnd)
	if activeWindow <= 0 {
		activeWindow = 7 * 24 * time.Hour
	}

	next := &entities.Round{
		Kind:            previous.Kind,
		Status:          entities.RoundStatusRegistration,
		StakeAmount:     previous.StakeAmount,
		PrizeAmount:     previous.PrizeAmount,
		RegistrationEnd: now.Add(registrationWindow),
		EndsAt:          now.Add(registrationWindow + activeWindow),
	}
	if err := s.roundRepo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to start replacement round: %w", err)
	}

	var carried int64
	for _, p := range carriers {
		successor := &entities.RoundParticipant{
			RoundID:    next.ID,
			UserID:     p.UserID,
			Stake:      p.Stake,
			Commitment: entities.CommitmentCarryForward,
		}
		if err := s.participantRepo.Create(ctx, successor); err != nil {
			return nil, fmt.Errorf("failed to carry participant forward: %w", err)
		}

		p.ReleasedAt = &now // stake left this round's pool
		if err := s.participantRepo.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to close out carried participant: %w", err)
		}
		carried += p.Stake
	}

	if carried > 0 {
		next.Pool = carried
		if err := s.roundRepo.Update(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to pool carried stakes: %w", err)
		}
	}
	return next, nil
}
