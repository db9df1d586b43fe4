package interfaces

import (
	"context"
	"time"

	"fortuna/domain/entities"
	"fortuna/events"

	"github.com/shopspring/decimal"
)

// EventPublisher dispatches notification events. Fire-and-forget: callers
// must not treat a publish as part of the settlement unit.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// DrawSettlementResult summarizes one completed draw settlement
type DrawSettlementResult struct {
	Draw           *entities.Draw
	Winners        []*entities.DrawWinner
	WinningNumbers string
	TotalPaid      int64 // cents credited to real winners
}

// DrawSettlementService commits a due draw's outcome as one atomic unit
type DrawSettlementService interface {
	// Settle selects winners for the draw and applies all money movement.
	// Returns ErrAlreadySettled or ErrCancelled without writing when the
	// status precondition fails.
	Settle(ctx context.Context, drawID int64) (*DrawSettlementResult, error)
}

// DrawSchedulingService keeps future draws in existence
type DrawSchedulingService interface {
	// EnsureUpcomingDraws creates the next draw for every enabled lottery
	// type that has none scheduled past now
	EnsureUpcomingDraws(ctx context.Context, now time.Time) ([]*entities.Draw, error)
}

// TradeSettlementResult summarizes one settled binary trade
type TradeSettlementResult struct {
	Trade *entities.BinaryTrade
	Audit *entities.TradeAuditLog
}

// TradeSettlementService resolves expired binary trades
type TradeSettlementService interface {
	// Settle applies the direction decision against the resolving price.
	// Returns ErrNotDue before expiry and ErrAlreadySettled on terminal
	// trades, without writing.
	Settle(ctx context.Context, tradeID int64, exitPrice decimal.Decimal) (*TradeSettlementResult, error)

	// Fail moves a trade to the terminal error status when no resolving
	// price is available, with an audit entry and no payout.
	Fail(ctx context.Context, tradeID int64, reason string) (*TradeSettlementResult, error)
}

// RoundCompletionResult summarizes one completed round
type RoundCompletionResult struct {
	Round         *entities.Round
	Winner        *entities.RoundParticipant // nil when the round had no participants
	PrizeAmount   int64
	RefundedCount int
	CarriedPool   int64 // cents re-pooled into the replacement round
	NextRound     *entities.Round
}

// RoundService drives the multi-day round lifecycle
type RoundService interface {
	// ActivateDueRounds moves rounds whose registration window closed into
	// the active state
	ActivateDueRounds(ctx context.Context, now time.Time) ([]*entities.Round, error)

	// RevealDueClues publishes staged clues whose reveal time has passed
	RevealDueClues(ctx context.Context, now time.Time) ([]*entities.RoundClue, error)

	// CompleteRound settles a due round: winner payout, refundable-stake
	// refunds, carry-forward pooling, and the replacement round.
	CompleteRound(ctx context.Context, roundID int64) (*RoundCompletionResult, error)

	// RequestUnlock releases a carry-forward stake back to the wallet
	RequestUnlock(ctx context.Context, participantID int64) error
}
