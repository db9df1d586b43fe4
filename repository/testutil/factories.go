package testutil

import (
	"time"

	"fortuna/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTestDraw creates a scheduled draw for the seeded daily lottery type
// (id 1), due one minute in the past so settlement queries pick it up
func CreateTestDraw() *entities.Draw {
	return &entities.Draw{
		LotteryTypeID: 1,
		Frequency:     entities.DrawFrequencyDaily,
		DrawDate:      time.Now().UTC().Add(-time.Minute),
		Status:        entities.DrawStatusScheduled,
	}
}

// CreateTestTicket creates a ticket for a draw with a fresh serial number
func CreateTestTicket(drawID, userID int64) *entities.Ticket {
	return &entities.Ticket{
		DrawID:       drawID,
		UserID:       userID,
		SerialNumber: uuid.NewString(),
		Numbers:      "5-12-23-31-40",
		Price:        200,
	}
}

// CreateTestTrade creates an active binary trade against the seeded BTCUSDT
// instrument (id 1), already past its expiry
func CreateTestTrade(userID int64, stake int64) *entities.BinaryTrade {
	now := time.Now().UTC()
	return &entities.BinaryTrade{
		UserID:       userID,
		InstrumentID: 1,
		Symbol:       "BTCUSDT",
		Direction:    entities.TradeDirectionUp,
		Stake:        stake,
		EntryPrice:   decimal.RequireFromString("65000.50"),
		Duration:     5 * time.Minute,
		EnteredAt:    now.Add(-6 * time.Minute),
		ExpiresAt:    now.Add(-time.Minute),
		Status:       entities.TradeStatusActive,
	}
}

// CreateTestRound creates an active mystery-search round that ended a minute
// ago
func CreateTestRound(kind entities.RoundKind) *entities.Round {
	now := time.Now().UTC()
	return &entities.Round{
		Kind:            kind,
		Status:          entities.RoundStatusActive,
		StakeAmount:     10_000,
		PrizeAmount:     500_000,
		RegistrationEnd: now.Add(-48 * time.Hour),
		EndsAt:          now.Add(-time.Minute),
	}
}

// CreateTestParticipant creates a locked refundable stake in a round
func CreateTestParticipant(roundID, userID int64, stake int64) *entities.RoundParticipant {
	return &entities.RoundParticipant{
		RoundID:    roundID,
		UserID:     userID,
		Stake:      stake,
		Commitment: entities.CommitmentRefundable,
	}
}
