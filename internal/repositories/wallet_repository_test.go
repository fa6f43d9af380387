package repositories

import (
	"context"
	"testing"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWallet(userID string, balance int64) *models.Wallet {
	return &models.Wallet{
		UserID:               userID,
		Balance:              decimal.NewFromInt(balance),
		Currency:             "BDT",
		TotalDeposited:       decimal.NewFromInt(balance),
		DailyLimit:           decimal.NewFromInt(10000),
		MonthlyLimit:         decimal.NewFromInt(100000),
		MaxTransactionAmount: decimal.NewFromInt(50000),
		VerificationStatus:   models.VerificationUnverified,
		IsActive:             true,
	}
}

func TestWalletRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, seedWallet("player-1", 150)))

	w, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "BDT", w.Currency)

	_, err = repo.GetByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)

	err = repo.Create(ctx, seedWallet("player-1", 0))
	assert.ErrorIs(t, err, ErrDuplicateWallet)
}

func TestWalletRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, seedWallet("player-1", 100)))

	first, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)
	second, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)

	first.Balance = decimal.NewFromInt(70)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, second.Version+1, first.Version)

	second.Balance = decimal.NewFromInt(10)
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.Equal(t, first.Version-1, second.Version)

	stored, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, first.Version, stored.Version)
}

func TestWalletRepository_UpdatePersistsEmbeddedColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, seedWallet("player-1", 0)))

	w, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)
	w.Restrictions = models.Restrictions{IsSuspended: true, SuspensionReason: "review"}
	w.MonthlyUsage = models.MonthlyUsage{Amount: decimal.NewFromInt(300), Month: "2026-03"}
	require.NoError(t, repo.Update(ctx, w))

	stored, err := repo.GetByUserID(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, stored.Restrictions.IsSuspended)
	assert.Equal(t, "review", stored.Restrictions.SuspensionReason)
	assert.Equal(t, "2026-03", stored.MonthlyUsage.Month)
	assert.True(t, stored.MonthlyUsage.Amount.Equal(decimal.NewFromInt(300)))
}

func TestWalletRepository_GetTotalBalance(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	totals, err := repo.GetTotalBalance(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Wallets)
	assert.True(t, totals.Balance.IsZero())

	require.NoError(t, repo.Create(ctx, seedWallet("player-1", 100)))
	require.NoError(t, repo.Create(ctx, seedWallet("player-2", 250)))

	totals, err = repo.GetTotalBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Wallets)
	assert.True(t, totals.Balance.Equal(decimal.NewFromInt(350)))
	assert.True(t, totals.TotalDeposited.Equal(decimal.NewFromInt(350)))
	assert.True(t, totals.TotalWithdrawn.IsZero())
}
