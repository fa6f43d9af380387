package wallet

import (
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// EvaluateLimits checks amount against w at now. It reads w only and never
// mutates it; stale usage windows count as zero.
//
// Order: suspension, per-transaction maximum, then daily and monthly
// ceilings. The usage ceilings apply to withdrawals only.
func EvaluateLimits(w *models.Wallet, amount decimal.Decimal, usage models.TransactionType, now time.Time, loc *time.Location) error {
	if w.Restrictions.SuspendedAt(now) {
		return apperrors.ErrWalletSuspended
	}
	if w.MaxTransactionAmount.IsPositive() && amount.GreaterThan(w.MaxTransactionAmount) {
		return apperrors.ErrTransactionTooLarge
	}
	if usage != models.TransactionTypeWithdrawal {
		return nil
	}

	daily, monthly := currentUsage(w, now, loc)
	if daily.Add(amount).GreaterThan(w.DailyLimit) {
		return apperrors.ErrDailyLimitExceeded
	}
	if monthly.Add(amount).GreaterThan(w.MonthlyLimit) {
		return apperrors.ErrMonthlyLimitExceeded
	}
	return nil
}

// ResetWindows zeroes the usage counters whose day or month has passed.
func ResetWindows(w *models.Wallet, now time.Time, loc *time.Location) {
	now = now.In(loc)
	if !sameDay(w.DailyUsage.Date, now, loc) {
		w.DailyUsage = models.DailyUsage{Amount: decimal.Zero, Date: startOfDay(now)}
	}
	if month := now.Format(MonthLayout); w.MonthlyUsage.Month != month {
		w.MonthlyUsage = models.MonthlyUsage{Amount: decimal.Zero, Month: month}
	}
}

// tracksUsage reports whether a movement type counts toward the rolling
// usage windows.
func tracksUsage(usage models.TransactionType) bool {
	return usage == models.TransactionTypeDeposit || usage == models.TransactionTypeWithdrawal
}

func currentUsage(w *models.Wallet, now time.Time, loc *time.Location) (daily, monthly decimal.Decimal) {
	now = now.In(loc)
	if sameDay(w.DailyUsage.Date, now, loc) {
		daily = w.DailyUsage.Amount
	}
	if w.MonthlyUsage.Month == now.Format(MonthLayout) {
		monthly = w.MonthlyUsage.Amount
	}
	return daily, monthly
}

func sameDay(stored, now time.Time, loc *time.Location) bool {
	if stored.IsZero() {
		return false
	}
	y1, m1, d1 := stored.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
