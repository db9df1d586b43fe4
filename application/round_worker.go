package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/interfaces"
	"fortuna/domain/services"
	"fortuna/events"

	log "github.com/sirupsen/logrus"
)

// RoundWorker drives the multi-day round lifecycle: activation when the
// registration window closes, staged clue reveals, and completion.
type RoundWorker struct {
	uowFactory UnitOfWorkFactory
	eventBus   *events.Bus
	rng        services.Rand
	interval   time.Duration
	running    atomic.Bool
}

// NewRoundWorker creates a new round worker
func NewRoundWorker(uowFactory UnitOfWorkFactory, eventBus *events.Bus, interval time.Duration) *RoundWorker {
	return &RoundWorker{
		uowFactory: uowFactory,
		eventBus:   eventBus,
		rng:        services.NewCryptoRand(),
		interval:   interval,
	}
}

// Start begins the worker loop. Returns a stop function.
func (w *RoundWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Round worker started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Info("Round worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Round worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.tick(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

func (w *RoundWorker) tick(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		log.Debug("Round worker tick skipped, previous run still in progress")
		return
	}
	defer w.running.Store(false)

	now := time.Now().UTC()
	if err := w.activateDueRounds(ctx, now); err != nil {
		log.WithError(err).Error("Error activating rounds")
	}
	if err := w.revealDueClues(ctx, now); err != nil {
		log.WithError(err).Error("Error revealing clues")
	}
	if err := w.completeDueRounds(ctx, now); err != nil {
		log.WithError(err).Error("Error completing rounds")
	}
}

func (w *RoundWorker) newService(uow UnitOfWork) interfaces.RoundService {
	return services.NewRoundService(
		uow.RoundRepository(),
		uow.RoundClueRepository(),
		uow.RoundParticipantRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		w.rng,
	)
}

func (w *RoundWorker) activateDueRounds(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	activated, err := w.newService(uow).ActivateDueRounds(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to activate rounds: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, round := range activated {
		log.WithFields(log.Fields{
			"round_id": round.ID,
			"kind":     round.Kind,
			"ends_at":  round.EndsAt.UTC(),
		}).Info("Round activated")
	}
	return nil
}

func (w *RoundWorker) revealDueClues(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	revealed, err := w.newService(uow).RevealDueClues(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to reveal clues: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, clue := range revealed {
		w.eventBus.Emit(ctx, events.ClueRevealedEvent{
			RoundID:  clue.RoundID,
			ClueID:   clue.ID,
			Sequence: clue.Sequence,
		})
		log.WithFields(log.Fields{
			"round_id": clue.RoundID,
			"sequence": clue.Sequence,
		}).Info("Round clue revealed")
	}
	return nil
}

func (w *RoundWorker) completeDueRounds(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	due, err := uow.RoundRepository().GetDueRounds(ctx, now)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get due rounds: %w", err)
	}
	uow.Rollback() // Close the read transaction

	for _, round := range due {
		if err := w.completeRound(ctx, round); err != nil {
			log.WithError(err).Errorf("Error completing round %d", round.ID)
		}
	}
	return nil
}

func (w *RoundWorker) completeRound(ctx context.Context, round *entities.Round) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := w.newService(uow).CompleteRound(ctx, round.ID)
	if err != nil {
		// An overlapping trigger may have completed it first
		if errors.Is(err, services.ErrAlreadySettled) {
			return nil
		}
		return fmt.Errorf("failed to complete round: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	var winnerUserID *int64
	if result.Winner != nil {
		winnerUserID = &result.Winner.UserID
	}
	var nextRoundID int64
	if result.NextRound != nil {
		nextRoundID = result.NextRound.ID
	}
	w.eventBus.Emit(ctx, events.RoundCompletedEvent{
		RoundID:       result.Round.ID,
		Kind:          result.Round.Kind,
		WinnerUserID:  winnerUserID,
		PrizeAmount:   result.PrizeAmount,
		RefundedCount: result.RefundedCount,
		NextRoundID:   nextRoundID,
	})

	log.WithFields(log.Fields{
		"round_id":       result.Round.ID,
		"kind":           result.Round.Kind,
		"prize_amount":   result.PrizeAmount,
		"refunded_count": result.RefundedCount,
		"carried_pool":   result.CarriedPool,
	}).Info("Round completed")

	return nil
}
