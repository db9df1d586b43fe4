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

func setupRoundServiceMocks() (
	*testhelpers.MockRoundRepository,
	*testhelpers.MockRoundClueRepository,
	*testhelpers.MockRoundParticipantRepository,
	*testhelpers.MockWalletRepository,
	*testhelpers.MockTransactionRepository,
) {
	return new(testhelpers.MockRoundRepository),
		new(testhelpers.MockRoundClueRepository),
		new(testhelpers.MockRoundParticipantRepository),
		new(testhelpers.MockWalletRepository),
		new(testhelpers.MockTransactionRepository)
}

func testRound(kind entities.RoundKind) *entities.Round {
	now := time.Now().UTC()
	return &entities.Round{
		ID:              9,
		Kind:            kind,
		Status:          entities.RoundStatusActive,
		StakeAmount:     10_000,
		PrizeAmount:     500_000,
		Pool:            30_000,
		RegistrationEnd: now.Add(-8 * 24 * time.Hour),
		EndsAt:          now.Add(-time.Hour),
	}
}

func TestCompleteRound_RefundableStakesNetToZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	round := testRound(entities.RoundKindMysterySearch)
	participants := []*entities.RoundParticipant{
		{ID: 1, RoundID: 9, UserID: 101, Stake: 10_000, Commitment: entities.CommitmentRefundable},
		{ID: 2, RoundID: 9, UserID: 102, Stake: 10_000, Commitment: entities.CommitmentRefundable},
		{ID: 3, RoundID: 9, UserID: 103, Stake: 10_000, Commitment: entities.CommitmentRefundable},
	}

	wallets := map[int64]*entities.Wallet{
		101: {ID: 1, UserID: 101, Balance: 0},
		102: {ID: 2, UserID: 102, Balance: 0},
		103: {ID: 3, UserID: 103, Balance: 0},
	}

	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)
	participantRepo.On("GetByRound", mock.Anything, int64(9)).Return(participants, nil)
	for userID, w := range wallets {
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, userID).Return(w, nil)
	}
	walletRepo.On("UpdateBalances", mock.Anything, mock.AnythingOfType("*entities.Wallet")).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)
	participantRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.RoundParticipant")).Return(nil)
	roundRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Round")).Return(nil)
	roundRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Round")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Round).ID = 10
		}).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	result, err := service.CompleteRound(ctx, 9)
	require.NoError(t, err)

	// Winner gets their stake back plus the house prize
	require.NotNil(t, result.Winner)
	assert.Equal(t, int64(101), result.Winner.UserID)
	assert.True(t, result.Winner.Won)
	assert.Equal(t, int64(500_000), result.PrizeAmount)
	assert.Equal(t, int64(510_000), wallets[101].Balance)

	// Non-winners end the round where they started
	assert.Equal(t, 2, result.RefundedCount)
	assert.Equal(t, int64(10_000), wallets[102].Balance)
	assert.Equal(t, int64(10_000), wallets[103].Balance)

	// Pool fully drained, round terminal, replacement started
	assert.Equal(t, int64(0), round.Pool)
	assert.Equal(t, entities.RoundStatusCompleted, round.Status)
	require.NotNil(t, result.NextRound)
	assert.Equal(t, entities.RoundStatusRegistration, result.NextRound.Status)
	assert.Equal(t, int64(0), result.CarriedPool)
}

func TestCompleteRound_CarryForwardStakesMoveToNextRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	round := testRound(entities.RoundKindLockToWin)
	participants := []*entities.RoundParticipant{
		{ID: 1, RoundID: 9, UserID: 101, Stake: 10_000, Commitment: entities.CommitmentCarryForward},
		{ID: 2, RoundID: 9, UserID: 102, Stake: 10_000, Commitment: entities.CommitmentCarryForward},
		{ID: 3, RoundID: 9, UserID: 103, Stake: 10_000, Commitment: entities.CommitmentCarryForward},
	}

	winnerWallet := &entities.Wallet{ID: 1, UserID: 101, Balance: 0}

	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)
	participantRepo.On("GetByRound", mock.Anything, int64(9)).Return(participants, nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(101)).Return(winnerWallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, winnerWallet).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)
	participantRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.RoundParticipant")).Return(nil)
	roundRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Round")).Return(nil)

	var nextRound *entities.Round
	roundRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Round")).
		Run(func(args mock.Arguments) {
			nextRound = args.Get(1).(*entities.Round)
			nextRound.ID = 10
		}).Return(nil)

	var carried []*entities.RoundParticipant
	participantRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.RoundParticipant")).
		Run(func(args mock.Arguments) {
			carried = append(carried, args.Get(1).(*entities.RoundParticipant))
		}).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	result, err := service.CompleteRound(ctx, 9)
	require.NoError(t, err)

	// Two non-winner stakes roll into the replacement round
	assert.Equal(t, int64(20_000), result.CarriedPool)
	assert.Equal(t, 0, result.RefundedCount)
	require.Len(t, carried, 2)
	for _, p := range carried {
		assert.Equal(t, int64(10), p.RoundID)
		assert.Equal(t, entities.CommitmentCarryForward, p.Commitment)
	}
	require.NotNil(t, nextRound)
	assert.Equal(t, int64(20_000), nextRound.Pool)

	// Only the winner's stake return and prize touch a wallet
	walletRepo.AssertNumberOfCalls(t, "GetByUserIDForUpdate", 2)
	assert.Equal(t, int64(510_000), winnerWallet.Balance)
}

func TestCompleteRound_NoParticipants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	round := testRound(entities.RoundKindMysterySearch)
	round.Pool = 0

	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)
	participantRepo.On("GetByRound", mock.Anything, int64(9)).Return([]*entities.RoundParticipant{}, nil)
	roundRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Round")).Return(nil)
	roundRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Round")).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	result, err := service.CompleteRound(ctx, 9)
	require.NoError(t, err)

	assert.Nil(t, result.Winner)
	assert.Equal(t, int64(0), result.PrizeAmount)
	assert.Equal(t, entities.RoundStatusCompleted, round.Status)
	walletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
}

func TestCompleteRound_SecondCompletionRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	round := testRound(entities.RoundKindMysterySearch)
	round.Status = entities.RoundStatusCompleted
	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	_, err := service.CompleteRound(ctx, 9)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	participantRepo.AssertNotCalled(t, "GetByRound", mock.Anything, mock.Anything)
}

func TestCompleteRound_RegistrationRoundRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	// A forced completion must not short-circuit the registration window
	round := testRound(entities.RoundKindMysterySearch)
	round.Status = entities.RoundStatusRegistration
	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	_, err := service.CompleteRound(ctx, 9)
	assert.ErrorIs(t, err, ErrNotDue)
	assert.Equal(t, entities.RoundStatusRegistration, round.Status)
	participantRepo.AssertNotCalled(t, "GetByRound", mock.Anything, mock.Anything)
	walletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
}

func TestRequestUnlock_ReleasesCarryForwardStake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	round := testRound(entities.RoundKindLockToWin)
	p := &entities.RoundParticipant{ID: 4, RoundID: 9, UserID: 101, Stake: 10_000, Commitment: entities.CommitmentCarryForward}
	wallet := &entities.Wallet{ID: 1, UserID: 101, Balance: 100}

	participantRepo.On("GetByIDForUpdate", mock.Anything, int64(4)).Return(p, nil)
	roundRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(round, nil)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(101)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, wallet).Return(nil)
	participantRepo.On("Update", mock.Anything, p).Return(nil)
	roundRepo.On("Update", mock.Anything, round).Return(nil)

	var ledger *entities.Transaction
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).
		Run(func(args mock.Arguments) {
			ledger = args.Get(1).(*entities.Transaction)
		}).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	require.NoError(t, service.RequestUnlock(ctx, 4))

	assert.Equal(t, int64(10_100), wallet.Balance)
	assert.Equal(t, int64(20_000), round.Pool)
	require.NotNil(t, p.ReleasedAt)
	require.NotNil(t, p.UnlockRequestedAt)

	require.NotNil(t, ledger)
	assert.Equal(t, entities.TransactionTypeLockRelease, ledger.Type)
	assert.Equal(t, int64(100), ledger.BalanceBefore)
	assert.Equal(t, int64(10_100), ledger.BalanceAfter)
}

func TestRequestUnlock_RefundableStakeRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	p := &entities.RoundParticipant{ID: 4, RoundID: 9, UserID: 101, Stake: 10_000, Commitment: entities.CommitmentRefundable}
	participantRepo.On("GetByIDForUpdate", mock.Anything, int64(4)).Return(p, nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	err := service.RequestUnlock(ctx, 4)
	assert.Error(t, err)
	walletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
}

func TestRequestUnlock_AlreadyReleasedRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	released := time.Now().UTC()
	p := &entities.RoundParticipant{
		ID: 4, RoundID: 9, UserID: 101, Stake: 10_000,
		Commitment: entities.CommitmentCarryForward,
		ReleasedAt: &released,
	}
	participantRepo.On("GetByIDForUpdate", mock.Anything, int64(4)).Return(p, nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	err := service.RequestUnlock(ctx, 4)
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestActivateDueRounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	now := time.Now().UTC()
	round := testRound(entities.RoundKindMysterySearch)
	round.Status = entities.RoundStatusRegistration

	roundRepo.On("GetRegistrationExpired", mock.Anything, now).Return([]*entities.Round{round}, nil)
	roundRepo.On("Update", mock.Anything, round).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	activated, err := service.ActivateDueRounds(ctx, now)
	require.NoError(t, err)
	require.Len(t, activated, 1)
	assert.Equal(t, entities.RoundStatusActive, round.Status)
}

func TestRevealDueClues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	roundRepo, clueRepo, participantRepo, walletRepo, txRepo := setupRoundServiceMocks()

	now := time.Now().UTC()
	clues := []*entities.RoundClue{
		{ID: 1, RoundID: 9, Sequence: 1, Text: "first", RevealAt: now.Add(-time.Hour)},
		{ID: 2, RoundID: 9, Sequence: 2, Text: "second", RevealAt: now.Add(-time.Minute)},
	}
	clueRepo.On("GetDue", mock.Anything, now).Return(clues, nil)
	clueRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.RoundClue")).Return(nil)

	service := NewRoundService(roundRepo, clueRepo, participantRepo, walletRepo, txRepo, newSeqRand(0))

	revealed, err := service.RevealDueClues(ctx, now)
	require.NoError(t, err)
	require.Len(t, revealed, 2)
	for _, c := range revealed {
		require.NotNil(t, c.RevealedAt)
	}
}
