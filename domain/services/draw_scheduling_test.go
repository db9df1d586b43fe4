package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fortuna/domain/entities"
	"fortuna/domain/testhelpers"
)

func TestEnsureUpcomingDraws_CreatesMissingDraws(t *testing.T) {
	t.Parallel()

	drawRepo := new(testhelpers.MockDrawRepository)
	typeRepo := new(testhelpers.MockLotteryTypeRepository)

	daily := testLotteryType()
	weekly := &entities.LotteryType{
		ID:             2,
		Code:           "weekly",
		Frequency:      entities.DrawFrequencyWeekly,
		TicketPrice:    2_000,
		FeePercent:     30,
		NumbersPerLine: 5,
		MaxNumber:      49,
		Enabled:        true,
	}

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	typeRepo.On("GetEnabled", mock.Anything).Return([]*entities.LotteryType{daily, weekly}, nil)
	// The daily draw already exists, the weekly one does not.
	drawRepo.On("HasUpcoming", mock.Anything, daily.ID, now).Return(true, nil)
	drawRepo.On("HasUpcoming", mock.Anything, weekly.ID, now).Return(false, nil)
	drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).Return(nil)

	service := NewDrawSchedulingService(drawRepo, typeRepo)

	created, err := service.EnsureUpcomingDraws(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, created, 1)

	draw := created[0]
	assert.Equal(t, weekly.ID, draw.LotteryTypeID)
	assert.Equal(t, entities.DrawFrequencyWeekly, draw.Frequency)
	assert.Equal(t, entities.DrawStatusScheduled, draw.Status)
	assert.True(t, draw.DrawDate.After(now))

	drawRepo.AssertNumberOfCalls(t, "Create", 1)
	drawRepo.AssertExpectations(t)
	typeRepo.AssertExpectations(t)
}

func TestEnsureUpcomingDraws_AllScheduledIsNoOp(t *testing.T) {
	t.Parallel()

	drawRepo := new(testhelpers.MockDrawRepository)
	typeRepo := new(testhelpers.MockLotteryTypeRepository)

	daily := testLotteryType()
	now := time.Now().UTC()

	typeRepo.On("GetEnabled", mock.Anything).Return([]*entities.LotteryType{daily}, nil)
	drawRepo.On("HasUpcoming", mock.Anything, daily.ID, now).Return(true, nil)

	service := NewDrawSchedulingService(drawRepo, typeRepo)

	created, err := service.EnsureUpcomingDraws(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, created)
	drawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureUpcomingDraws_RepositoryErrorPropagates(t *testing.T) {
	t.Parallel()

	drawRepo := new(testhelpers.MockDrawRepository)
	typeRepo := new(testhelpers.MockLotteryTypeRepository)

	typeRepo.On("GetEnabled", mock.Anything).Return(nil, errors.New("connection reset"))

	service := NewDrawSchedulingService(drawRepo, typeRepo)

	_, err := service.EnsureUpcomingDraws(context.Background(), time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get lottery types")
}
