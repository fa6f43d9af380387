package payment

import (
	"context"
	"errors"
	"testing"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/services/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedTransactionID(t *testing.T, err error) string {
	t.Helper()
	var failed *FailedError
	require.True(t, errors.As(err, &failed), "expected FailedError, got %v", err)
	return failed.TransactionID
}

func TestRetry_DepositSucceedsOnSecondAttempt(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.gw.setRespond(declined)

	_, err := h.svc.Deposit(ctx, PaymentRequest{
		UserID:        "player-1",
		Amount:        decimal.NewFromInt(250),
		PaymentMethod: gateway.MethodBkash,
		Account:       "01700000000",
	})
	txID := failedTransactionID(t, err)

	var seenAccount string
	h.gw.setRespond(func(_ context.Context, _ string, req gateway.Request) (*gateway.Result, error) {
		seenAccount = req.Account
		return &gateway.Result{Success: true, TransactionID: "GW-retry", Provider: "bkash"}, nil
	})

	res, err := h.svc.Retry(ctx, "player-1", txID)
	require.NoError(t, err)
	assert.Equal(t, txID, res.TransactionID)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "01700000000", seenAccount)

	tx, err := h.ledger.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, 1, tx.RetryCount)
	assert.Equal(t, "GW-retry", tx.GatewayTransactionID)
}

func TestRetry_WithdrawalRefundsEachAttempt(t *testing.T) {
	h := newHarness(t, harnessOptions{maxRetries: 2})
	ctx := context.Background()
	h.credit(t, "player-1", 500)
	h.gw.setRespond(declined)

	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 200))
	txID := failedTransactionID(t, err)

	for attempt := 1; attempt <= 2; attempt++ {
		_, err = h.svc.Retry(ctx, "player-1", txID)
		var failed *FailedError
		require.True(t, errors.As(err, &failed))
		assert.Equal(t, attempt < 2, failed.Retryable)
		assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(500)))
	}

	_, err = h.svc.Retry(ctx, "player-1", txID)
	assert.ErrorIs(t, err, apperrors.ErrMaxRetriesExceeded)

	comps, err := h.ledger.Compensations(ctx, txID)
	require.NoError(t, err)
	require.Len(t, comps, 3)
	for i, c := range comps {
		assert.Equal(t, i, c.Attempt)
	}
	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(500)))
	assert.Zero(t, h.openCount(t))
}

func TestRetry_WithdrawalSucceeds(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.credit(t, "player-1", 500)
	h.gw.setRespond(declined)

	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 200))
	txID := failedTransactionID(t, err)

	h.gw.setRespond(nil)
	res, err := h.svc.Retry(ctx, "player-1", txID)
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(300)))

	tx, err := h.ledger.Get(ctx, txID)
	require.NoError(t, err)
	assert.True(t, tx.BalanceBefore.Equal(decimal.NewFromInt(500)))
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(300)))

	comps, err := h.ledger.Compensations(ctx, txID)
	require.NoError(t, err)
	assert.Len(t, comps, 1)
}

func TestRetry_WithdrawalChecksCurrentBalance(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.credit(t, "player-1", 500)
	h.gw.setRespond(declined)

	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 400))
	txID := failedTransactionID(t, err)

	h.gw.setRespond(nil)
	_, err = h.svc.ChargeTournamentFee(ctx, FeeRequest{UserID: "player-1", Amount: decimal.NewFromInt(300), TournamentID: "t-1"})
	require.NoError(t, err)

	_, err = h.svc.Retry(ctx, "player-1", txID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	tx, err := h.ledger.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
	assert.Zero(t, tx.RetryCount)
}

func TestRetry_Rejections(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	done := h.deposit(t, "player-1", 100)
	_, err := h.svc.Retry(ctx, "player-1", done.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotRetryable)

	_, err = h.svc.Retry(ctx, "player-2", done.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	_, err = h.svc.Retry(ctx, "player-1", "no-such-transaction")
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	prize, err := h.svc.AwardPrize(ctx, PrizeRequest{UserID: "player-1", Amount: decimal.NewFromInt(10), TournamentID: "t-1"})
	require.NoError(t, err)
	_, err = h.svc.Retry(ctx, "player-1", prize.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotRetryable)
}

func TestRequestFromTransaction(t *testing.T) {
	tx := models.NewTransaction("player-1", models.TransactionTypeWithdrawal, decimal.NewFromInt(10), decimal.Zero)
	tx.PaymentMethod = gateway.MethodNagad
	tx.Meta = models.TransactionMeta{Meta: models.WithdrawalMeta{PayeeAccount: "019", IPAddress: "10.0.0.1"}}

	req := requestFromTransaction(tx)
	assert.Equal(t, "019", req.Account)
	assert.Equal(t, "10.0.0.1", req.IPAddress)
	assert.Equal(t, gateway.MethodNagad, req.PaymentMethod)
}
