package services

import (
	"context"
	"testing"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTradeSettlementMocks() (
	*testhelpers.MockTradeRepository,
	*testhelpers.MockTradeAuditRepository,
	*testhelpers.MockWalletRepository,
	*testhelpers.MockTransactionRepository,
	*testhelpers.MockInstrumentRepository,
) {
	return new(testhelpers.MockTradeRepository),
		new(testhelpers.MockTradeAuditRepository),
		new(testhelpers.MockWalletRepository),
		new(testhelpers.MockTransactionRepository),
		new(testhelpers.MockInstrumentRepository)
}

func testInstrument() *entities.Instrument {
	return &entities.Instrument{
		ID:               3,
		Symbol:           "BTCUSDT",
		PayoutMultiplier: decimal.RequireFromString("1.85"),
		MinStake:         100,
		MaxStake:         100_000,
		Enabled:          true,
	}
}

func testTrade(direction entities.TradeDirection, stake int64) *entities.BinaryTrade {
	now := time.Now().UTC()
	return &entities.BinaryTrade{
		ID:           21,
		UserID:       77,
		InstrumentID: 3,
		Symbol:       "BTCUSDT",
		Direction:    direction,
		Stake:        stake,
		EntryPrice:   decimal.RequireFromString("65000.00"),
		Duration:     60 * time.Second,
		EnteredAt:    now.Add(-2 * time.Minute),
		ExpiresAt:    now.Add(-time.Minute),
		Status:       entities.TradeStatusActive,
	}
}

func TestTradeSettlement_UpWinPaysMultipliedStake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionUp, 1_000)
	wallet := &entities.Wallet{ID: 5, UserID: 77, Balance: 2_000}

	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)
	instrumentRepo.On("GetByID", mock.Anything, int64(3)).Return(testInstrument(), nil)
	tradeRepo.On("Update", mock.Anything, trade).Return(nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(77)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, wallet).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.TradeAuditLog")).Return(nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	result, err := service.Settle(ctx, 21, decimal.RequireFromString("65000.01"))
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusWon, result.Trade.Status)
	// 1000 * 1.85 = 1850, floored to cents
	assert.Equal(t, int64(1_850), result.Trade.Payout)
	assert.Equal(t, int64(3_850), wallet.Balance)
	require.NotNil(t, result.Trade.ExitPrice)
	assert.Equal(t, "settled", result.Audit.Event)

	auditRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestTradeSettlement_TieLoses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionUp, 1_000)
	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)
	instrumentRepo.On("GetByID", mock.Anything, int64(3)).Return(testInstrument(), nil)
	tradeRepo.On("Update", mock.Anything, trade).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.TradeAuditLog")).Return(nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	// Exit exactly at entry: up does not win
	result, err := service.Settle(ctx, 21, decimal.RequireFromString("65000.00"))
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusLost, result.Trade.Status)
	assert.Equal(t, int64(0), result.Trade.Payout)

	// A losing trade moves no money but still leaves an audit row
	walletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	auditRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestTradeSettlement_DownWin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionDown, 2_000)
	wallet := &entities.Wallet{ID: 5, UserID: 77, Balance: 0}

	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)
	instrumentRepo.On("GetByID", mock.Anything, int64(3)).Return(testInstrument(), nil)
	tradeRepo.On("Update", mock.Anything, trade).Return(nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(77)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, wallet).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.TradeAuditLog")).Return(nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	result, err := service.Settle(ctx, 21, decimal.RequireFromString("64999.99"))
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusWon, result.Trade.Status)
	assert.Equal(t, int64(3_700), result.Trade.Payout)
}

func TestTradeSettlement_NotDueBeforeExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionUp, 1_000)
	trade.ExpiresAt = time.Now().UTC().Add(time.Minute)
	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	_, err := service.Settle(ctx, 21, decimal.RequireFromString("66000"))
	assert.ErrorIs(t, err, ErrNotDue)
	assert.Equal(t, entities.TradeStatusActive, trade.Status)
	tradeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTradeSettlement_SecondSettlementRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionUp, 1_000)
	trade.Status = entities.TradeStatusWon
	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	_, err := service.Settle(ctx, 21, decimal.RequireFromString("66000"))
	assert.ErrorIs(t, err, ErrAlreadySettled)

	_, err = service.Fail(ctx, 21, "late failure")
	assert.ErrorIs(t, err, ErrAlreadySettled)

	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything)
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTradeSettlement_FailMarksErrorWithAudit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo := setupTradeSettlementMocks()

	trade := testTrade(entities.TradeDirectionUp, 1_000)
	tradeRepo.On("GetByIDForUpdate", mock.Anything, int64(21)).Return(trade, nil)
	tradeRepo.On("Update", mock.Anything, trade).Return(nil)

	var audit *entities.TradeAuditLog
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.TradeAuditLog")).
		Run(func(args mock.Arguments) {
			audit = args.Get(1).(*entities.TradeAuditLog)
		}).Return(nil)

	service := NewTradeSettlementService(tradeRepo, auditRepo, walletRepo, txRepo, instrumentRepo)

	result, err := service.Fail(ctx, 21, "no resolving price for BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusError, result.Trade.Status)
	assert.Equal(t, int64(0), result.Trade.Payout)
	assert.Nil(t, result.Trade.ExitPrice)
	require.NotNil(t, result.Trade.SettledAt)

	require.NotNil(t, audit)
	assert.Equal(t, "price_unavailable", audit.Event)
	assert.Contains(t, audit.Detail, "no resolving price")

	// The error path never touches the wallet
	walletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTradeOutcomeRules(t *testing.T) {
	t.Parallel()

	entry := decimal.RequireFromString("100")
	cases := []struct {
		direction entities.TradeDirection
		exit      string
		want      entities.TradeStatus
	}{
		{entities.TradeDirectionUp, "100.01", entities.TradeStatusWon},
		{entities.TradeDirectionUp, "100", entities.TradeStatusLost},
		{entities.TradeDirectionUp, "99.99", entities.TradeStatusLost},
		{entities.TradeDirectionDown, "99.99", entities.TradeStatusWon},
		{entities.TradeDirectionDown, "100", entities.TradeStatusLost},
		{entities.TradeDirectionDown, "100.01", entities.TradeStatusLost},
	}

	for _, tc := range cases {
		trade := &entities.BinaryTrade{Direction: tc.direction, EntryPrice: entry}
		assert.Equal(t, tc.want, trade.Outcome(decimal.RequireFromString(tc.exit)),
			"%s exit %s", tc.direction, tc.exit)
	}
}

func TestComputePayoutFloorsToCents(t *testing.T) {
	t.Parallel()

	trade := &entities.BinaryTrade{Stake: 333}
	// 333 * 1.85 = 616.05, floored to 616
	assert.Equal(t, int64(616), trade.ComputePayout(decimal.RequireFromString("1.85")))
}
