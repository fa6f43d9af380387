package wallet

import (
	"testing"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func limitedWallet() *models.Wallet {
	return &models.Wallet{
		DailyLimit:           decimal.NewFromInt(1000),
		MonthlyLimit:         decimal.NewFromInt(5000),
		MaxTransactionAmount: decimal.NewFromInt(800),
		DailyUsage:           models.DailyUsage{Amount: decimal.NewFromInt(900), Date: startOfDay(testNow)},
		MonthlyUsage:         models.MonthlyUsage{Amount: decimal.NewFromInt(4500), Month: "2026-03"},
	}
}

func TestEvaluateLimits(t *testing.T) {
	expired := testNow.Add(-time.Minute)
	later := testNow.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(w *models.Wallet)
		amount  int64
		usage   models.TransactionType
		now     time.Time
		wantErr error
	}{
		{name: "daily limit reached exactly", amount: 100, usage: models.TransactionTypeWithdrawal, now: testNow},
		{name: "daily limit exceeded", amount: 101, usage: models.TransactionTypeWithdrawal, now: testNow, wantErr: apperrors.ErrDailyLimitExceeded},
		{name: "over transaction maximum", amount: 801, usage: models.TransactionTypeDeposit, now: testNow, wantErr: apperrors.ErrTransactionTooLarge},
		{name: "deposits skip usage ceilings", amount: 700, usage: models.TransactionTypeDeposit, now: testNow},
		{name: "new day resets daily usage", amount: 600, usage: models.TransactionTypeWithdrawal, now: testNow.AddDate(0, 0, 1), wantErr: apperrors.ErrMonthlyLimitExceeded},
		{name: "new month resets monthly usage", amount: 600, usage: models.TransactionTypeWithdrawal, now: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{
			name:    "suspended",
			mutate:  func(w *models.Wallet) { w.Restrictions = models.Restrictions{IsSuspended: true} },
			amount:  1,
			usage:   models.TransactionTypeDeposit,
			now:     testNow,
			wantErr: apperrors.ErrWalletSuspended,
		},
		{
			name:    "suspension until later",
			mutate:  func(w *models.Wallet) { w.Restrictions = models.Restrictions{IsSuspended: true, SuspensionExpiresAt: &later} },
			amount:  1,
			usage:   models.TransactionTypeDeposit,
			now:     testNow,
			wantErr: apperrors.ErrWalletSuspended,
		},
		{
			name:   "suspension lapsed",
			mutate: func(w *models.Wallet) { w.Restrictions = models.Restrictions{IsSuspended: true, SuspensionExpiresAt: &expired} },
			amount: 1,
			usage:  models.TransactionTypeDeposit,
			now:    testNow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := limitedWallet()
			if tt.mutate != nil {
				tt.mutate(w)
			}
			err := EvaluateLimits(w, decimal.NewFromInt(tt.amount), tt.usage, tt.now, time.UTC)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, w.DailyUsage.Amount.Equal(decimal.NewFromInt(900)), "usage must not be mutated")
		})
	}
}

func TestResetWindows(t *testing.T) {
	w := limitedWallet()
	ResetWindows(w, testNow, time.UTC)
	assert.True(t, w.DailyUsage.Amount.Equal(decimal.NewFromInt(900)))

	nextDay := testNow.AddDate(0, 0, 1)
	ResetWindows(w, nextDay, time.UTC)
	assert.True(t, w.DailyUsage.Amount.IsZero())
	assert.Equal(t, startOfDay(nextDay), w.DailyUsage.Date)
	assert.True(t, w.MonthlyUsage.Amount.Equal(decimal.NewFromInt(4500)))

	ResetWindows(w, time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.True(t, w.MonthlyUsage.Amount.IsZero())
	assert.Equal(t, "2026-04", w.MonthlyUsage.Month)
}

func TestResetWindowsUsesLocation(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*60*60)
	w := limitedWallet()

	// 20:00 UTC on the 15th is already the 16th in Dhaka.
	ResetWindows(w, time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC), dhaka)
	assert.True(t, w.DailyUsage.Amount.IsZero())
}
