package transaction

import (
	"context"
	"fmt"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ledger struct {
	repo   repositories.TransactionRepository
	config Config
	logger *zap.Logger
}

// NewLedger creates a ledger backed by repo
func NewLedger(repo repositories.TransactionRepository, config Config, logger *zap.Logger) Ledger {
	if repo == nil {
		panic("repo is required")
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ledger{repo: repo, config: config, logger: logger}
}

func (l *ledger) Open(ctx context.Context, p OpenParams) (*models.Transaction, error) {
	if err := validateOpen(p); err != nil {
		return nil, err
	}

	tx := models.NewTransaction(p.UserID, p.Type, p.Amount, p.Fees)
	tx.Currency = p.Currency
	tx.PaymentMethod = p.PaymentMethod
	tx.PaymentGateway = p.PaymentGateway
	tx.Description = p.Description
	tx.Meta = models.TransactionMeta{Meta: p.Meta}
	tx.BalanceBefore = p.BalanceBefore
	tx.BalanceAfter = p.BalanceAfter
	tx.MaxRetries = l.config.MaxRetries
	if p.MaxRetries > 0 {
		tx.MaxRetries = p.MaxRetries
	}
	now := l.config.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := l.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	l.logger.Debug("transaction opened",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("user_id", tx.UserID),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))
	return tx, nil
}

func validateOpen(p OpenParams) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: missing user id", apperrors.ErrInvalidTransaction)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", apperrors.ErrInvalidTransaction, p.Type)
	}
	if !p.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if p.Fees.IsNegative() || p.Fees.GreaterThan(p.Amount) {
		return fmt.Errorf("%w: fees must be between zero and the amount", apperrors.ErrInvalidTransaction)
	}
	if p.Meta != nil && p.Meta.Kind() != p.Type {
		return fmt.Errorf("%w: %s meta on %s transaction", apperrors.ErrInvalidTransaction, p.Meta.Kind(), p.Type)
	}
	return nil
}

func (l *ledger) MarkProcessing(ctx context.Context, tx *models.Transaction) error {
	return l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status != models.TransactionStatusPending {
			return l.invalidFrom(next, models.TransactionStatusProcessing)
		}
		next.Status = models.TransactionStatusProcessing
		return nil
	})
}

func (l *ledger) MarkCompleted(ctx context.Context, tx *models.Transaction, gatewayTransactionID string, resp *models.GatewayResponse) error {
	err := l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status.Terminal() {
			return apperrors.ErrTransactionFinalized
		}
		now := l.config.Now()
		next.Status = models.TransactionStatusCompleted
		next.GatewayTransactionID = gatewayTransactionID
		if resp != nil {
			next.GatewayResponse = resp
		}
		next.FailureReason = ""
		next.CompletedAt = &now
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("transaction completed",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("type", string(tx.Type)),
		zap.String("gateway_transaction_id", gatewayTransactionID))
	return nil
}

func (l *ledger) MarkFailed(ctx context.Context, tx *models.Transaction, reason string) error {
	err := l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status.Terminal() {
			return apperrors.ErrTransactionFinalized
		}
		now := l.config.Now()
		next.Status = models.TransactionStatusFailed
		next.FailureReason = reason
		next.FailedAt = &now
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Warn("transaction failed",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("type", string(tx.Type)),
		zap.Int("retry_count", tx.RetryCount),
		zap.String("reason", reason))
	return nil
}

func (l *ledger) Cancel(ctx context.Context, tx *models.Transaction, reason string) error {
	return l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status != models.TransactionStatusPending {
			return l.invalidFrom(next, models.TransactionStatusCancelled)
		}
		next.Status = models.TransactionStatusCancelled
		next.FailureReason = reason
		return nil
	})
}

func (l *ledger) Retry(ctx context.Context, tx *models.Transaction) error {
	return l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status != models.TransactionStatusFailed {
			return apperrors.ErrTransactionNotRetryable
		}
		if next.RetryCount >= next.MaxRetries {
			return apperrors.ErrMaxRetriesExceeded
		}
		next.RetryCount++
		next.Status = models.TransactionStatusPending
		next.FailureReason = ""
		next.FailedAt = nil
		return nil
	})
}

func (l *ledger) Resume(ctx context.Context, tx *models.Transaction) error {
	return l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status != models.TransactionStatusFailed || next.GatewayTransactionID == "" {
			return apperrors.ErrTransactionNotRetryable
		}
		next.Status = models.TransactionStatusPending
		next.FailureReason = ""
		next.FailedAt = nil
		return nil
	})
}

func (l *ledger) RefreshSnapshot(ctx context.Context, tx *models.Transaction, before, after decimal.Decimal) error {
	return l.transition(ctx, tx, func(next *models.Transaction) error {
		if next.Status != models.TransactionStatusPending {
			return l.invalidFrom(next, models.TransactionStatusPending)
		}
		next.BalanceBefore = before
		next.BalanceAfter = after
		return nil
	})
}

// transition applies change to a copy of tx, persists it and only then
// updates tx.
func (l *ledger) transition(ctx context.Context, tx *models.Transaction, change func(next *models.Transaction) error) error {
	next := *tx
	if err := change(&next); err != nil {
		return err
	}
	next.UpdatedAt = l.config.Now()
	if err := l.repo.Update(ctx, &next); err != nil {
		return err
	}
	*tx = next
	return nil
}

func (l *ledger) invalidFrom(tx *models.Transaction, to models.TransactionStatus) error {
	if tx.Status.Terminal() && tx.Status != models.TransactionStatusFailed {
		return apperrors.ErrTransactionFinalized
	}
	return fmt.Errorf("%w: cannot move from %s to %s", apperrors.ErrInvalidTransaction, tx.Status, to)
}

func (l *ledger) RecordCompensation(ctx context.Context, tx *models.Transaction, amount decimal.Decimal, reason string) (*models.Compensation, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	c := &models.Compensation{
		TransactionID: tx.TransactionID,
		Attempt:       tx.RetryCount,
		UserID:        tx.UserID,
		Amount:        amount,
		Reason:        reason,
		CreatedAt:     l.config.Now(),
	}
	if err := l.repo.CreateCompensation(ctx, c); err != nil {
		return nil, err
	}

	l.logger.Info("compensation recorded",
		zap.String("transaction_id", tx.TransactionID),
		zap.Int("attempt", c.Attempt),
		zap.String("amount", amount.String()))
	return c, nil
}

func (l *ledger) Compensations(ctx context.Context, transactionID string) ([]models.Compensation, error) {
	return l.repo.ListCompensations(ctx, transactionID)
}

func (l *ledger) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return l.repo.GetByTransactionID(ctx, transactionID)
}

func (l *ledger) List(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	if filter.UserID == "" {
		return nil, 0, fmt.Errorf("%w: missing user id", apperrors.ErrInvalidTransaction)
	}
	return l.repo.List(ctx, filter)
}

func (l *ledger) Summarize(ctx context.Context, userID string, from, to *time.Time) ([]models.TransactionSummary, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: start date after end date", apperrors.ErrInvalidTransaction)
	}
	return l.repo.Summarize(ctx, userID, from, to)
}
