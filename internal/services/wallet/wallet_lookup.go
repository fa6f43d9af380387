package wallet

import (
	"context"
	"errors"
	"fmt"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *store) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", apperrors.ErrInvalidTransaction)
	}

	w, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperrors.ErrWalletNotFound) {
		return nil, err
	}

	w = s.newWallet(userID)
	if err := s.repo.Create(ctx, w); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			// Lost a creation race with another process.
			return s.repo.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	s.logger.Info("wallet created", zap.String("user_id", userID))
	return w, nil
}

func (s *store) newWallet(userID string) *models.Wallet {
	now := s.config.Now().In(s.config.Location)
	return &models.Wallet{
		UserID:               userID,
		Balance:              decimal.Zero,
		Currency:             s.config.DefaultCurrency,
		TotalDeposited:       decimal.Zero,
		TotalWithdrawn:       decimal.Zero,
		TotalWon:             decimal.Zero,
		TotalSpent:           decimal.Zero,
		DailyUsage:           models.DailyUsage{Amount: decimal.Zero, Date: startOfDay(now)},
		MonthlyUsage:         models.MonthlyUsage{Amount: decimal.Zero, Month: now.Format(MonthLayout)},
		DailyLimit:           s.config.DefaultDailyLimit,
		MonthlyLimit:         s.config.DefaultMonthlyLimit,
		MaxTransactionAmount: s.config.DefaultMaxTransactionAmount,
		VerificationStatus:   models.VerificationUnverified,
		IsActive:             true,
	}
}
