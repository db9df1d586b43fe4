package services

import (
	"context"
	"testing"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDrawSettlementMocks() (
	*testhelpers.MockDrawRepository,
	*testhelpers.MockTicketRepository,
	*testhelpers.MockDrawWinnerRepository,
	*testhelpers.MockWalletRepository,
	*testhelpers.MockTransactionRepository,
	*testhelpers.MockLotteryTypeRepository,
) {
	return new(testhelpers.MockDrawRepository),
		new(testhelpers.MockTicketRepository),
		new(testhelpers.MockDrawWinnerRepository),
		new(testhelpers.MockWalletRepository),
		new(testhelpers.MockTransactionRepository),
		new(testhelpers.MockLotteryTypeRepository)
}

func testLotteryType() *entities.LotteryType {
	return &entities.LotteryType{
		ID:             1,
		Code:           "daily",
		Frequency:      entities.DrawFrequencyDaily,
		TicketPrice:    1_000,
		FeePercent:     30,
		NumbersPerLine: 5,
		MaxNumber:      49,
		Enabled:        true,
	}
}

func testDraw(pool int64) *entities.Draw {
	return &entities.Draw{
		ID:                7,
		LotteryTypeID:     1,
		Frequency:         entities.DrawFrequencyDaily,
		DrawDate:          time.Now().UTC().Add(-time.Minute),
		Status:            entities.DrawStatusActive,
		TotalPool:         pool * 10 / 7,
		DistributablePool: pool,
	}
}

func TestDrawSettlement_PaysWinnersAndCompletesDraw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()

	// A $100 pool funds two $50 prizes
	draw := testDraw(10_000)
	tickets := []*entities.Ticket{
		{ID: 1, DrawID: 7, UserID: 101},
		{ID: 2, DrawID: 7, UserID: 102},
		{ID: 3, DrawID: 7, UserID: 103},
	}

	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)
	typeRepo.On("GetByID", mock.Anything, int64(1)).Return(testLotteryType(), nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(7)).Return(tickets, nil)

	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(101)).
		Return(&entities.Wallet{ID: 11, UserID: 101, Balance: 500}, nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(102)).
		Return(&entities.Wallet{ID: 12, UserID: 102, Balance: 500}, nil)
	walletRepo.On("UpdateBalances", mock.Anything, mock.AnythingOfType("*entities.Wallet")).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)
	ticketRepo.On("MarkWinner", mock.Anything, mock.AnythingOfType("int64"), int64(5_000)).Return(nil)
	winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.DrawWinner")).Return(nil)
	drawRepo.On("Update", mock.Anything, draw).Return(nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0, 0, 1, 2, 3, 4, 5))

	result, err := service.Settle(ctx, 7)
	require.NoError(t, err)

	// Two real $50 winners plus the display-only mega record
	require.Len(t, result.Winners, 3)
	var realCount int
	for _, w := range result.Winners {
		if !w.DisplayOnly {
			realCount++
		}
	}
	assert.Equal(t, 2, realCount)
	assert.Equal(t, int64(10_000), result.TotalPaid)
	assert.NotEmpty(t, result.WinningNumbers)
	assert.Equal(t, entities.DrawStatusCompleted, draw.Status)
	require.NotNil(t, draw.WinningNumbers)
	assert.Equal(t, result.WinningNumbers, *draw.WinningNumbers)

	// Every real winner moved money exactly once
	walletRepo.AssertNumberOfCalls(t, "UpdateBalances", 2)
	txRepo.AssertNumberOfCalls(t, "Create", 2)
	winnerRepo.AssertExpectations(t)
	drawRepo.AssertExpectations(t)
}

func TestDrawSettlement_AlreadySettledNoOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()

	draw := testDraw(10_000)
	draw.Status = entities.DrawStatusCompleted
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0))

	_, err := service.Settle(ctx, 7)
	assert.ErrorIs(t, err, ErrAlreadySettled)

	// No money moved, no winner rows written
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	winnerRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestDrawSettlement_CancelledDrawRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()

	draw := testDraw(10_000)
	draw.Status = entities.DrawStatusCancelled
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0))

	_, err := service.Settle(ctx, 7)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestDrawSettlement_UnknownDraw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(99)).Return(nil, nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0))

	_, err := service.Settle(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrawSettlement_ZeroTicketsWritesDisplayRecordOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()

	// Rich pool, nobody bought in: the flagged tier still produces a
	// display-only record, and not a cent moves.
	draw := testDraw(1_200_000)
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)
	typeRepo.On("GetByID", mock.Anything, int64(1)).Return(testLotteryType(), nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(7)).Return([]*entities.Ticket{}, nil)

	var captured []*entities.DrawWinner
	winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.DrawWinner")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]*entities.DrawWinner)
		}).Return(nil)
	drawRepo.On("Update", mock.Anything, draw).Return(nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0, 1, 2, 3, 4))

	result, err := service.Settle(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.TotalPaid)
	require.Len(t, captured, 1)
	assert.True(t, captured[0].DisplayOnly)
	assert.Nil(t, captured[0].UserID)
	assert.True(t, captured[0].Distributed)

	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, entities.DrawStatusCompleted, draw.Status)
}

func TestDrawSettlement_LedgerEntriesPairBalances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo := setupDrawSettlementMocks()

	// Exactly one $50 prize
	draw := testDraw(5_000)
	wallet := &entities.Wallet{ID: 11, UserID: 101, Balance: 250}

	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)
	typeRepo.On("GetByID", mock.Anything, int64(1)).Return(testLotteryType(), nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(7)).
		Return([]*entities.Ticket{{ID: 1, DrawID: 7, UserID: 101}}, nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(101)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, wallet).Return(nil)
	ticketRepo.On("MarkWinner", mock.Anything, int64(1), int64(5_000)).Return(nil)
	winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.DrawWinner")).Return(nil)
	drawRepo.On("Update", mock.Anything, draw).Return(nil)

	var ledger *entities.Transaction
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).
		Run(func(args mock.Arguments) {
			ledger = args.Get(1).(*entities.Transaction)
		}).Return(nil)

	service := NewDrawSettlementService(drawRepo, ticketRepo, winnerRepo, walletRepo, txRepo, typeRepo, newSeqRand(0, 0, 1, 2, 3, 4))

	_, err := service.Settle(ctx, 7)
	require.NoError(t, err)

	require.NotNil(t, ledger)
	assert.Equal(t, entities.TransactionTypePrizeWin, ledger.Type)
	assert.Equal(t, int64(250), ledger.BalanceBefore)
	assert.Equal(t, int64(5_250), ledger.BalanceAfter)
	assert.Equal(t, int64(5_250), wallet.Balance)
	assert.Equal(t, int64(5_000), wallet.TotalWinnings)
}
