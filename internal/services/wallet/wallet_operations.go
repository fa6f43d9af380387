package wallet

import (
	"context"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

func (s *store) AddFunds(ctx context.Context, w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) (BalanceChange, error) {
	if !amount.IsPositive() {
		return BalanceChange{}, apperrors.ErrInvalidAmount
	}

	var change BalanceChange
	err := s.persist(ctx, "add_funds", w, func(w *models.Wallet) error {
		ResetWindows(w, s.config.Now(), s.config.Location)

		change.Before = w.Balance
		w.Balance = w.Balance.Add(amount)
		change.After = w.Balance

		switch usage {
		case models.TransactionTypeDeposit:
			w.TotalDeposited = w.TotalDeposited.Add(amount)
		case models.TransactionTypePrizeWin:
			w.TotalWon = w.TotalWon.Add(amount)
		}
		addUsage(w, amount, usage)
		return nil
	})
	if err != nil {
		return BalanceChange{}, err
	}

	s.metrics.RecordBalanceChange(usage, amount)
	return change, nil
}

func (s *store) DeductFunds(ctx context.Context, w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) (BalanceChange, error) {
	if !amount.IsPositive() {
		return BalanceChange{}, apperrors.ErrInvalidAmount
	}

	var change BalanceChange
	err := s.persist(ctx, "deduct_funds", w, func(w *models.Wallet) error {
		if w.Balance.LessThan(amount) {
			return apperrors.ErrInsufficientBalance
		}
		ResetWindows(w, s.config.Now(), s.config.Location)

		change.Before = w.Balance
		w.Balance = w.Balance.Sub(amount)
		change.After = w.Balance

		switch usage {
		case models.TransactionTypeWithdrawal:
			w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
		case models.TransactionTypeTournamentFee:
			w.TotalSpent = w.TotalSpent.Add(amount)
		}
		addUsage(w, amount, usage)
		return nil
	})
	if err != nil {
		return BalanceChange{}, err
	}

	s.metrics.RecordBalanceChange(usage, amount.Neg())
	return change, nil
}

func addUsage(w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) {
	if !tracksUsage(usage) {
		return
	}
	w.DailyUsage.Amount = w.DailyUsage.Amount.Add(amount)
	w.MonthlyUsage.Amount = w.MonthlyUsage.Amount.Add(amount)
}
