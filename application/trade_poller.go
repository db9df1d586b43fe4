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
	"fortuna/pricefeed"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// settleTimeout bounds one trade's settlement, price lookup included
const settleTimeout = 10 * time.Second

// TradePoller resolves expired binary trades against the price feed. Each
// trade settles in its own transaction; a trade with no resolving price is
// moved to the terminal error status rather than retried forever.
type TradePoller struct {
	uowFactory UnitOfWorkFactory
	feed       pricefeed.Feed
	eventBus   *events.Bus
	interval   time.Duration
	running    atomic.Bool
}

// NewTradePoller creates a new trade poller
func NewTradePoller(uowFactory UnitOfWorkFactory, feed pricefeed.Feed, eventBus *events.Bus, interval time.Duration) *TradePoller {
	return &TradePoller{
		uowFactory: uowFactory,
		feed:       feed,
		eventBus:   eventBus,
		interval:   interval,
	}
}

// Start begins the poller loop. Returns a stop function.
func (w *TradePoller) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Trade poller started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Info("Trade poller shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Trade poller shutting down (stop requested)...")
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

func (w *TradePoller) tick(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		log.Debug("Trade poller tick skipped, previous run still in progress")
		return
	}
	defer w.running.Store(false)

	if err := w.settleExpiredTrades(ctx); err != nil {
		log.WithError(err).Error("Error settling expired trades")
	}
}

func (w *TradePoller) settleExpiredTrades(ctx context.Context) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	expired, err := uow.TradeRepository().GetExpiredActive(ctx, time.Now().UTC())
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get expired trades: %w", err)
	}
	uow.Rollback() // Close the read transaction

	if len(expired) == 0 {
		return nil
	}

	log.Infof("Found %d expired trades to settle", len(expired))

	for _, trade := range expired {
		if err := w.settleTrade(ctx, trade); err != nil {
			log.WithError(err).Errorf("Error settling trade %d", trade.ID)
		}
	}

	return nil
}

func (w *TradePoller) settleTrade(ctx context.Context, trade *entities.BinaryTrade) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	exitPrice, ok := w.resolvePrice(ctx, trade)

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := services.NewTradeSettlementService(
		uow.TradeRepository(),
		uow.TradeAuditRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		uow.InstrumentRepository(),
	)

	var result *interfaces.TradeSettlementResult
	var err error
	if ok {
		result, err = settlementService.Settle(ctx, trade.ID, exitPrice)
	} else {
		result, err = settlementService.Fail(ctx, trade.ID, fmt.Sprintf("no resolving price for %s at expiry %s", trade.Symbol, trade.ExpiresAt.UTC()))
	}
	if err != nil {
		// Another poller instance may have settled it first
		if errors.Is(err, services.ErrAlreadySettled) {
			return nil
		}
		return fmt.Errorf("failed to settle trade: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	exitPriceStr := ""
	if result.Trade.ExitPrice != nil {
		exitPriceStr = result.Trade.ExitPrice.String()
	}
	w.eventBus.Emit(ctx, events.TradeSettledEvent{
		TradeID:   result.Trade.ID,
		UserID:    result.Trade.UserID,
		Symbol:    result.Trade.Symbol,
		Status:    result.Trade.Status,
		ExitPrice: exitPriceStr,
		Payout:    result.Trade.Payout,
	})

	log.WithFields(log.Fields{
		"trade_id": result.Trade.ID,
		"symbol":   result.Trade.Symbol,
		"status":   result.Trade.Status,
		"payout":   result.Trade.Payout,
	}).Info("Trade settled")

	return nil
}

// resolvePrice returns the price the trade settles against: the sample
// closest to expiry when one exists, otherwise the latest sample as long as
// the feed is not stale.
func (w *TradePoller) resolvePrice(ctx context.Context, trade *entities.BinaryTrade) (decimal.Decimal, bool) {
	if price, ok := w.feed.PriceAt(ctx, trade.Symbol, trade.ExpiresAt); ok {
		return price, true
	}
	if w.feed.IsStale(trade.Symbol) {
		return decimal.Zero, false
	}
	return w.feed.Latest(ctx, trade.Symbol)
}
