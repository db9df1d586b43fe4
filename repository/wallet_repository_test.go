package repository

import (
	"context"
	"testing"

	"fortuna/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		wallet, err := repo.Create(ctx, 100001, 50_000)
		require.NoError(t, err)
		require.NotNil(t, wallet)

		assert.Equal(t, int64(100001), wallet.UserID)
		assert.Equal(t, int64(50_000), wallet.Balance)
		assert.Equal(t, int64(0), wallet.TotalWinnings)
		assert.False(t, wallet.CreatedAt.IsZero())
	})

	t.Run("duplicate user ID", func(t *testing.T) {
		_, err := repo.Create(ctx, 100002, 10_000)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 100002, 20_000)
		assert.Error(t, err)
	})
}

func TestWalletRepository_GetByUserID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	t.Run("wallet not found", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})

	t.Run("wallet found", func(t *testing.T) {
		created, err := repo.Create(ctx, 100003, 75_000)
		require.NoError(t, err)

		wallet, err := repo.GetByUserID(ctx, 100003)
		require.NoError(t, err)
		require.NotNil(t, wallet)

		assert.Equal(t, created.ID, wallet.ID)
		assert.Equal(t, int64(75_000), wallet.Balance)
	})
}

func TestWalletRepository_UpdateBalances(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists balance and lifetime totals", func(t *testing.T) {
		wallet, err := repo.Create(ctx, 100004, 10_000)
		require.NoError(t, err)

		require.NoError(t, wallet.Credit(5_000, true))

		err = repo.UpdateBalances(ctx, wallet)
		require.NoError(t, err)

		reloaded, err := repo.GetByUserID(ctx, 100004)
		require.NoError(t, err)
		assert.Equal(t, int64(15_000), reloaded.Balance)
		assert.Equal(t, int64(5_000), reloaded.TotalWinnings)
	})

	t.Run("wallet not found", func(t *testing.T) {
		wallet, err := repo.Create(ctx, 100005, 1_000)
		require.NoError(t, err)
		wallet.ID = 987654

		err = repo.UpdateBalances(ctx, wallet)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
