package payment

import (
	"context"
	"testing"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"
	cachekeys "arenapay/internal/utils/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_WalletCachedAndInvalidated(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	view, err := h.queries.Wallet(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, view.Balance.IsZero())
	assert.Equal(t, models.VerificationUnverified, view.VerificationStatus)
	assert.True(t, h.redis.Exists(cachekeys.WalletKey("player-1")))

	_, err = h.queries.Wallet(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.metrics.hits["wallet"])
	assert.Equal(t, 1, h.metrics.misses["wallet"])

	h.deposit(t, "player-1", 120)
	assert.False(t, h.redis.Exists(cachekeys.WalletKey("player-1")))

	view, err = h.queries.Wallet(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, view.Balance.Equal(decimal.NewFromInt(120)))
	assert.True(t, view.TotalDeposited.Equal(decimal.NewFromInt(120)))
}

func TestQueries_WalletSurvivesCacheOutage(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.redis.Close()

	view, err := h.queries.Wallet(context.Background(), "player-1")
	require.NoError(t, err)
	assert.Equal(t, "BDT", view.Currency)
}

func TestQueries_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.deposit(t, "player-1", 80)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view, err := h.queries.Wallet(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, view.Balance.Equal(decimal.NewFromInt(80)))
	assert.True(t, h.redis.Exists(cachekeys.WalletKey("player-1")))

	page, err := h.queries.Transactions(ctx, repositories.TransactionFilter{UserID: "player-1", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	rows, err := h.queries.Summary(ctx, "player-1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestQueries_Transactions(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	filter := repositories.TransactionFilter{UserID: "player-1", Limit: 20}

	h.deposit(t, "player-1", 10)
	page, err := h.queries.Transactions(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	cached, err := h.queries.Transactions(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, page.Total, cached.Total)
	assert.Equal(t, 1, h.metrics.hits["transactions"])

	h.deposit(t, "player-1", 20)
	page, err = h.queries.Transactions(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Transactions, 2)

	empty, err := h.queries.Transactions(ctx, repositories.TransactionFilter{UserID: "player-2"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Transactions)
	assert.Empty(t, empty.Transactions)
}

func TestQueries_Summary(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	h.deposit(t, "player-1", 100)
	h.deposit(t, "player-1", 50)
	h.gw.setRespond(declined)
	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 30))
	require.Error(t, err)

	rows, err := h.queries.Summary(ctx, "player-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionTypeDeposit, rows[0].Type)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.True(t, rows[0].TotalAmount.Equal(decimal.NewFromInt(150)))

	from := time.Now().Add(time.Hour)
	rows, err = h.queries.Summary(ctx, "player-1", &from, nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQueries_TransactionOwnership(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	res := h.deposit(t, "player-1", 10)

	tx, err := h.queries.Transaction(ctx, "player-1", res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, res.TransactionID, tx.TransactionID)

	_, err = h.queries.Transaction(ctx, "player-2", res.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}
