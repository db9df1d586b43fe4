package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/services"
	"fortuna/events"

	log "github.com/sirupsen/logrus"
)

// DrawScheduler settles due draws and keeps the upcoming draw schedule
// populated. Each draw is processed in its own transaction so one failure
// never blocks the rest of the batch.
type DrawScheduler struct {
	uowFactory UnitOfWorkFactory
	eventBus   *events.Bus
	rng        services.Rand
	interval   time.Duration
	running    atomic.Bool
}

// NewDrawScheduler creates a new draw scheduler
func NewDrawScheduler(uowFactory UnitOfWorkFactory, eventBus *events.Bus, interval time.Duration) *DrawScheduler {
	return &DrawScheduler{
		uowFactory: uowFactory,
		eventBus:   eventBus,
		rng:        services.NewCryptoRand(),
		interval:   interval,
	}
}

// Start begins the scheduler loop. Returns a stop function.
func (w *DrawScheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Draw scheduler started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Info("Draw scheduler shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Draw scheduler shutting down (stop requested)...")
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

func (w *DrawScheduler) tick(ctx context.Context) {
	// Skip overlapping ticks; settlement of a large draw can outlast the interval
	if !w.running.CompareAndSwap(false, true) {
		log.Debug("Draw scheduler tick skipped, previous run still in progress")
		return
	}
	defer w.running.Store(false)

	now := time.Now().UTC()
	if err := w.settleDueDraws(ctx, now); err != nil {
		log.WithError(err).Error("Error settling due draws")
	}
	if err := w.ensureUpcomingDraws(ctx, now); err != nil {
		log.WithError(err).Error("Error ensuring upcoming draws")
	}
}

func (w *DrawScheduler) settleDueDraws(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	dueDraws, err := uow.DrawRepository().GetDueDraws(ctx, now)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get due draws: %w", err)
	}
	uow.Rollback() // Close the read transaction

	if len(dueDraws) == 0 {
		return nil
	}

	log.Infof("Found %d due draws to settle", len(dueDraws))

	var successCount, failureCount int
	for _, draw := range dueDraws {
		if err := w.settleDraw(ctx, draw); err != nil {
			log.WithError(err).Errorf("Error settling draw %d", draw.ID)
			failureCount++
		} else {
			successCount++
		}
	}

	log.WithFields(log.Fields{
		"total_draws": len(dueDraws),
		"successful":  successCount,
		"failed":      failureCount,
	}).Info("Completed draw settlement batch")

	return nil
}

func (w *DrawScheduler) settleDraw(ctx context.Context, draw *entities.Draw) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := services.NewDrawSettlementService(
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.DrawWinnerRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		uow.LotteryTypeRepository(),
		w.rng,
	)

	result, err := settlementService.Settle(ctx, draw.ID)
	if err != nil {
		// An overlapping trigger may have settled it first
		if errors.Is(err, services.ErrAlreadySettled) {
			return nil
		}
		return fmt.Errorf("failed to settle draw: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Notify only after the settlement is durable
	w.eventBus.Emit(ctx, events.DrawSettledEvent{
		DrawID:         result.Draw.ID,
		Frequency:      result.Draw.Frequency,
		WinningNumbers: result.WinningNumbers,
		WinnerCount:    len(result.Winners),
		TotalPaid:      result.TotalPaid,
		SettledAt:      *result.Draw.ExecutedAt,
	})

	log.WithFields(log.Fields{
		"draw_id":      result.Draw.ID,
		"frequency":    result.Draw.Frequency,
		"winner_count": len(result.Winners),
		"total_paid":   result.TotalPaid,
	}).Info("Draw settled")

	return nil
}

func (w *DrawScheduler) ensureUpcomingDraws(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	schedulingService := services.NewDrawSchedulingService(
		uow.DrawRepository(),
		uow.LotteryTypeRepository(),
	)

	created, err := schedulingService.EnsureUpcomingDraws(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to ensure upcoming draws: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, draw := range created {
		log.WithFields(log.Fields{
			"draw_id":   draw.ID,
			"frequency": draw.Frequency,
			"draw_date": draw.DrawDate.UTC(),
		}).Info("Scheduled upcoming draw")
	}

	return nil
}
