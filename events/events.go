package events

import (
	"context"
	"sync"
	"time"

	"fortuna/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDrawSettled    EventType = "draw_settled"
	EventTypeTradeSettled   EventType = "trade_settled"
	EventTypeClueRevealed   EventType = "clue_revealed"
	EventTypeRoundCompleted EventType = "round_completed"
	EventTypeStakeUnlocked  EventType = "stake_unlocked"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DrawSettledEvent is emitted after a draw settlement commits. Consumed by
// notification and display surfaces.
type DrawSettledEvent struct {
	DrawID         int64
	Frequency      entities.DrawFrequency
	WinningNumbers string
	WinnerCount    int
	TotalPaid      int64
	SettledAt      time.Time
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// TradeSettledEvent is emitted after a binary trade reaches a terminal state
type TradeSettledEvent struct {
	TradeID   int64
	UserID    int64
	Symbol    string
	Status    entities.TradeStatus
	ExitPrice string // formatted decimal, empty on the error path
	Payout    int64
}

func (e TradeSettledEvent) Type() EventType {
	return EventTypeTradeSettled
}

// ClueRevealedEvent is emitted when a staged round clue becomes public
type ClueRevealedEvent struct {
	RoundID  int64
	ClueID   int64
	Sequence int
}

func (e ClueRevealedEvent) Type() EventType {
	return EventTypeClueRevealed
}

// RoundCompletedEvent is emitted after a round settles
type RoundCompletedEvent struct {
	RoundID       int64
	Kind          entities.RoundKind
	WinnerUserID  *int64
	PrizeAmount   int64
	RefundedCount int
	NextRoundID   int64
}

func (e RoundCompletedEvent) Type() EventType {
	return EventTypeRoundCompleted
}

// StakeUnlockedEvent is emitted when a carry-forward stake is released
type StakeUnlockedEvent struct {
	RoundID int64
	UserID  int64
	Amount  int64
}

func (e StakeUnlockedEvent) Type() EventType {
	return EventTypeStakeUnlocked
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching. Delivery is asynchronous
// and best-effort; settlement never depends on a handler succeeding.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
