package application

import (
	"context"

	"fortuna/events"

	log "github.com/sirupsen/logrus"
)

// RegisterSubscriptions wires the notification handlers. Settlement never
// waits on these; they run after commit on the bus's own goroutines.
func RegisterSubscriptions(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDrawSettled, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.DrawSettledEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"draw_id":         e.DrawID,
			"frequency":       e.Frequency,
			"winning_numbers": e.WinningNumbers,
			"winner_count":    e.WinnerCount,
		}).Info("Draw results published")
	})

	bus.Subscribe(events.EventTypeTradeSettled, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.TradeSettledEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"trade_id": e.TradeID,
			"user_id":  e.UserID,
			"status":   e.Status,
			"payout":   e.Payout,
		}).Info("Trade result published")
	})

	bus.Subscribe(events.EventTypeRoundCompleted, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.RoundCompletedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"round_id":      e.RoundID,
			"kind":          e.Kind,
			"prize_amount":  e.PrizeAmount,
			"next_round_id": e.NextRoundID,
		}).Info("Round result published")
	})

	bus.Subscribe(events.EventTypeStakeUnlocked, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.StakeUnlockedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"round_id": e.RoundID,
			"user_id":  e.UserID,
			"amount":   e.Amount,
		}).Info("Stake released")
	})

	bus.Subscribe(events.EventTypeClueRevealed, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.ClueRevealedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"round_id": e.RoundID,
			"sequence": e.Sequence,
		}).Info("Clue published")
	})
}
