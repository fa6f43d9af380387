package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type store struct {
	repo    repositories.WalletRepository
	config  Config
	metrics MetricsCollector
	logger  *zap.Logger
	locks   *userLocks
}

// NewStore creates a new wallet store
func NewStore(
	repo repositories.WalletRepository,
	config Config,
	metrics MetricsCollector,
	logger *zap.Logger,
) Store {
	if repo == nil {
		panic("repo is required")
	}

	if config.DefaultCurrency == "" {
		config.DefaultCurrency = DefaultCurrency
	}
	if config.DefaultDailyLimit.IsZero() {
		config.DefaultDailyLimit = decimal.NewFromInt(DefaultDailyLimit)
	}
	if config.DefaultMonthlyLimit.IsZero() {
		config.DefaultMonthlyLimit = decimal.NewFromInt(DefaultMonthlyLimit)
	}
	if config.DefaultMaxTransactionAmount.IsZero() {
		config.DefaultMaxTransactionAmount = decimal.NewFromInt(DefaultMaxTransactionAmount)
	}
	if config.PersistAttempts <= 0 {
		config.PersistAttempts = DefaultPersistAttempts
	}
	if config.Location == nil {
		config.Location = DefaultLocation
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &store{
		repo:    repo,
		config:  config,
		metrics: metrics,
		logger:  logger,
		locks:   newUserLocks(),
	}
}

func (s *store) Lock(userID string) func() {
	return s.locks.lock(userID)
}

func (s *store) CheckLimits(w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	err := EvaluateLimits(w, amount, usage, s.config.Now(), s.config.Location)
	if de, ok := apperrors.AsDomain(err); ok {
		s.metrics.RecordLimitRejection(de.Code)
	}
	return err
}

func (s *store) SetVerificationStatus(ctx context.Context, userID string, status models.VerificationStatus) (*models.Wallet, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidVerificationStatus
	}

	unlock := s.Lock(userID)
	defer unlock()

	w, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.persist(ctx, "set_verification", w, func(w *models.Wallet) error {
		w.VerificationStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet verification updated",
		zap.String("user_id", userID),
		zap.String("status", string(status)))
	return w, nil
}

func (s *store) SetSuspension(ctx context.Context, userID string, sus Suspension) (*models.Wallet, error) {
	if sus.Suspended && sus.ExpiresAt != nil && !sus.ExpiresAt.After(s.config.Now()) {
		return nil, fmt.Errorf("%w: suspension expiry must be in the future", apperrors.ErrInvalidTransaction)
	}

	unlock := s.Lock(userID)
	defer unlock()

	w, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.persist(ctx, "set_suspension", w, func(w *models.Wallet) error {
		if !sus.Suspended {
			w.Restrictions = models.Restrictions{}
			return nil
		}
		w.Restrictions = models.Restrictions{
			IsSuspended:         true,
			SuspensionReason:    sus.Reason,
			SuspensionExpiresAt: sus.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet suspension updated",
		zap.String("user_id", userID),
		zap.Bool("suspended", sus.Suspended),
		zap.String("reason", sus.Reason))
	return w, nil
}

// persist applies mutate to w and saves it. On a version conflict the
// wallet is reloaded and mutate is applied again, up to PersistAttempts
// times. On success w holds the stored state; on failure it is unchanged.
func (s *store) persist(ctx context.Context, operation string, w *models.Wallet, mutate func(*models.Wallet) error) error {
	start := s.config.Now()
	defer func() {
		s.metrics.RecordOperationDuration(operation, s.config.Now().Sub(start))
	}()

	current := w.Clone()
	for attempt := 1; ; attempt++ {
		if err := mutate(current); err != nil {
			s.metrics.RecordOperationResult(operation, "rejected")
			return err
		}

		err := s.repo.Update(ctx, current)
		if err == nil {
			*w = *current
			s.metrics.RecordOperationResult(operation, "success")
			return nil
		}
		if !errors.Is(err, apperrors.ErrConcurrentModification) || attempt >= s.config.PersistAttempts {
			s.metrics.RecordOperationResult(operation, "error")
			return err
		}

		s.metrics.RecordConflict(operation)
		s.logger.Warn("wallet version conflict, reloading",
			zap.String("user_id", w.UserID),
			zap.String("operation", operation),
			zap.Int("attempt", attempt))

		current, err = s.repo.GetByUserID(ctx, w.UserID)
		if err != nil {
			s.metrics.RecordOperationResult(operation, "error")
			return fmt.Errorf("failed to reload wallet: %w", err)
		}
	}
}
