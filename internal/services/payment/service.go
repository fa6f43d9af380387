package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"
	"arenapay/internal/repositories/cache"
	"arenapay/internal/services/events"
	"arenapay/internal/services/gateway"
	"arenapay/internal/services/transaction"
	"arenapay/internal/services/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultGatewayTimeout bounds a provider call when Config leaves it unset.
const DefaultGatewayTimeout = 10 * time.Second

// refundAttempts bounds how often a withdrawal refund is committed before
// the attempt is finalized without it.
const refundAttempts = 2

type service struct {
	wallets    wallet.Store
	ledger     transaction.Ledger
	transactor repositories.Transactor
	gateways   Gateways
	cache      cache.ReadCache
	publisher  events.Publisher
	config     Config
	metrics    MetricsCollector
	logger     *zap.Logger
}

// NewService creates a new payment service
func NewService(
	wallets wallet.Store,
	ledger transaction.Ledger,
	transactor repositories.Transactor,
	gateways Gateways,
	readCache cache.ReadCache,
	publisher events.Publisher,
	config Config,
	metrics MetricsCollector,
	logger *zap.Logger,
) Service {
	if wallets == nil {
		panic("wallet store is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if transactor == nil {
		panic("transactor is required")
	}
	if gateways == nil {
		panic("gateways are required")
	}

	if readCache == nil {
		readCache = cache.Noop{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if config.GatewayTimeout <= 0 {
		config.GatewayTimeout = DefaultGatewayTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		wallets:    wallets,
		ledger:     ledger,
		transactor: transactor,
		gateways:   gateways,
		cache:      readCache,
		publisher:  publisher,
		config:     config,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *service) Deposit(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	txType := models.TransactionTypeDeposit
	if !req.Amount.IsPositive() {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return nil, apperrors.ErrInvalidAmount
	}
	adapter, err := s.gateways.Resolve(req.PaymentMethod)
	if err != nil {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return nil, err
	}

	unlock := s.wallets.Lock(req.UserID)
	w, err := s.wallets.GetOrCreate(ctx, req.UserID)
	if err != nil {
		unlock()
		return nil, err
	}
	if err := s.wallets.CheckLimits(w, req.Amount, txType); err != nil {
		unlock()
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return nil, err
	}

	tx, err := s.ledger.Open(ctx, transaction.OpenParams{
		UserID:         req.UserID,
		Type:           txType,
		Amount:         req.Amount,
		Currency:       w.Currency,
		PaymentMethod:  req.PaymentMethod,
		PaymentGateway: adapter.Name(),
		Description:    req.Description,
		Meta:           models.DepositMeta{PayerAccount: req.Account, IPAddress: req.IPAddress},
		BalanceBefore:  w.Balance,
		BalanceAfter:   w.Balance.Add(req.Amount),
	})
	unlock()
	if err != nil {
		return nil, err
	}

	return s.executeDeposit(context.WithoutCancel(ctx), adapter, tx, req)
}

// executeDeposit runs the gateway step of an open deposit. The balance is
// only touched after the provider confirms the charge.
func (s *service) executeDeposit(ctx context.Context, adapter gateway.Adapter, tx *models.Transaction, req PaymentRequest) (*PaymentResult, error) {
	if err := s.ledger.MarkProcessing(ctx, tx); err != nil {
		return nil, s.abandon(ctx, tx, err)
	}

	result, callErr := s.callGateway(ctx, adapter, "charge", req, tx)
	if callErr != nil || !result.Success {
		reason := failureReason(result, callErr)
		tx.GatewayResponse = gatewayResponse(result)
		if err := s.ledger.MarkFailed(ctx, tx, reason); err != nil {
			s.logger.Error("failed to finalize deposit",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to finalize deposit: %w", err)
		}
		s.afterFailure(ctx, tx, tx.BalanceBefore)
		return nil, s.failedError(tx, tx.BalanceBefore, result, callErr)
	}

	var change wallet.BalanceChange
	snapshot := *tx
	unlock := s.wallets.Lock(tx.UserID)
	err := s.transactor.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.wallets.GetOrCreate(ctx, tx.UserID)
		if err != nil {
			return err
		}
		if change, err = s.wallets.AddFunds(ctx, w, tx.Amount, models.TransactionTypeDeposit); err != nil {
			return err
		}
		return s.ledger.MarkCompleted(ctx, tx, result.TransactionID, gatewayResponse(result))
	})
	unlock()
	if err != nil {
		// The provider charged the payer but the credit rolled back. The
		// FAILED record keeps the provider id; Retry credits it without
		// charging again.
		*tx = snapshot
		s.logger.Error("deposit charged but wallet credit failed",
			zap.String("transaction_id", tx.TransactionID),
			zap.String("gateway_transaction_id", result.TransactionID),
			zap.Error(err))
		tx.GatewayTransactionID = result.TransactionID
		tx.GatewayResponse = gatewayResponse(result)
		return nil, s.abandon(ctx, tx, err)
	}

	s.afterSuccess(ctx, tx, change.After)
	return &PaymentResult{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Balance:       change.After,
		Status:        tx.Status,
	}, nil
}

func (s *service) Withdraw(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	txType := models.TransactionTypeWithdrawal
	if !req.Amount.IsPositive() {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return nil, apperrors.ErrInvalidAmount
	}
	adapter, err := s.gateways.Resolve(req.PaymentMethod)
	if err != nil {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return nil, err
	}

	unlock := s.wallets.Lock(req.UserID)
	defer unlock()

	w, err := s.wallets.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDebit(w, req.Amount, txType); err != nil {
		return nil, err
	}

	// The entry and the deduction commit together, so every FAILED
	// withdrawal attempt has had its amount deducted.
	var (
		tx     *models.Transaction
		change wallet.BalanceChange
	)
	err = s.transactor.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		var err error
		tx, err = s.ledger.Open(ctx, transaction.OpenParams{
			UserID:         req.UserID,
			Type:           txType,
			Amount:         req.Amount,
			Currency:       w.Currency,
			PaymentMethod:  req.PaymentMethod,
			PaymentGateway: adapter.Name(),
			Description:    req.Description,
			Meta:           models.WithdrawalMeta{PayeeAccount: req.Account, IPAddress: req.IPAddress},
			BalanceBefore:  w.Balance,
			BalanceAfter:   w.Balance.Sub(req.Amount),
		})
		if err != nil {
			return err
		}
		change, err = s.wallets.DeductFunds(ctx, w, req.Amount, txType)
		return err
	})
	unlock()
	if err != nil {
		s.metrics.RecordPayment(txType, OutcomeError)
		return nil, err
	}

	return s.executeWithdrawal(context.WithoutCancel(ctx), adapter, tx, req, change.After)
}

// executeWithdrawal runs the gateway step of a withdrawal whose amount has
// already been deducted. Any failure refunds the current attempt once.
func (s *service) executeWithdrawal(ctx context.Context, adapter gateway.Adapter, tx *models.Transaction, req PaymentRequest, balance decimal.Decimal) (*PaymentResult, error) {
	if err := s.ledger.MarkProcessing(ctx, tx); err != nil {
		s.logger.Error("could not start payout",
			zap.String("transaction_id", tx.TransactionID),
			zap.Error(err))
		if _, refundErr := s.refundAndFail(ctx, tx, "internal error", nil); refundErr != nil {
			err = errors.Join(err, refundErr)
		}
		s.metrics.RecordPayment(tx.Type, OutcomeError)
		return nil, fmt.Errorf("transaction %s: %w", tx.TransactionID, err)
	}

	result, callErr := s.callGateway(ctx, adapter, "payout", req, tx)
	if callErr != nil || !result.Success {
		restored, err := s.refundAndFail(ctx, tx, failureReason(result, callErr), gatewayResponse(result))
		if err != nil {
			s.afterFailure(ctx, tx, balance)
			return nil, fmt.Errorf("failed to refund withdrawal %s: %w", tx.TransactionID, err)
		}
		s.afterFailure(ctx, tx, restored)
		return nil, s.failedError(tx, restored, result, callErr)
	}

	if err := s.ledger.MarkCompleted(ctx, tx, result.TransactionID, gatewayResponse(result)); err != nil {
		// Funds already left through the provider, so no refund here.
		s.logger.Error("payout sent but transaction not completed",
			zap.String("transaction_id", tx.TransactionID),
			zap.String("gateway_transaction_id", result.TransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to complete withdrawal: %w", err)
	}

	s.afterSuccess(ctx, tx, balance)
	return &PaymentResult{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Balance:       balance,
		Status:        tx.Status,
	}, nil
}

// refundAndFail refunds the current attempt of a withdrawal and marks it
// FAILED in one unit of work, returning the restored balance. If the
// refund cannot be committed the entry is still finalized as FAILED and
// the refund is applied by the next Retry.
func (s *service) refundAndFail(ctx context.Context, tx *models.Transaction, reason string, resp *models.GatewayResponse) (decimal.Decimal, error) {
	unlock := s.wallets.Lock(tx.UserID)
	defer unlock()

	var (
		balance  decimal.Decimal
		refunded bool
		err      error
	)
	for attempt := 1; attempt <= refundAttempts; attempt++ {
		snapshot := *tx
		err = s.transactor.ExecuteInTransaction(ctx, func(ctx context.Context) error {
			var err error
			if balance, refunded, err = s.refund(ctx, tx, reason); err != nil {
				return err
			}
			tx.GatewayResponse = resp
			return s.ledger.MarkFailed(ctx, tx, reason)
		})
		if err == nil {
			break
		}
		*tx = snapshot
		s.logger.Warn("withdrawal refund rolled back",
			zap.String("transaction_id", tx.TransactionID),
			zap.Int("attempt", tx.RetryCount),
			zap.Int("try", attempt),
			zap.Error(err))
	}

	if err != nil {
		tx.GatewayResponse = resp
		if failErr := s.ledger.MarkFailed(ctx, tx, reason); failErr != nil && !errors.Is(failErr, apperrors.ErrTransactionFinalized) {
			s.logger.Error("failed to finalize withdrawal",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(failErr))
		}
		return decimal.Zero, err
	}
	if refunded {
		s.refunded(ctx, tx, balance)
	}
	return balance, nil
}

// ensureRefunded applies the refund of a FAILED withdrawal's current
// attempt if it was not committed when the attempt failed. The caller
// holds the user's lock.
func (s *service) ensureRefunded(ctx context.Context, tx *models.Transaction) error {
	var (
		balance  decimal.Decimal
		refunded bool
	)
	err := s.transactor.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		var err error
		balance, refunded, err = s.refund(ctx, tx, "refund applied on retry")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to refund withdrawal %s: %w", tx.TransactionID, err)
	}
	if refunded {
		s.refunded(ctx, tx, balance)
	}
	return nil
}

// refund records the compensation of the current attempt and credits the
// wallet. It must run inside a unit of work. An attempt that already has
// its compensation is left alone and reports refunded false.
func (s *service) refund(ctx context.Context, tx *models.Transaction, reason string) (balance decimal.Decimal, refunded bool, err error) {
	w, err := s.wallets.GetOrCreate(ctx, tx.UserID)
	if err != nil {
		return decimal.Zero, false, err
	}

	comps, err := s.ledger.Compensations(ctx, tx.TransactionID)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, c := range comps {
		if c.Attempt == tx.RetryCount {
			s.logger.Warn("attempt already refunded",
				zap.String("transaction_id", tx.TransactionID),
				zap.Int("attempt", tx.RetryCount))
			return w.Balance, false, nil
		}
	}

	if _, err := s.ledger.RecordCompensation(ctx, tx, tx.Amount, reason); err != nil {
		return decimal.Zero, false, err
	}
	change, err := s.wallets.AddFunds(ctx, w, tx.Amount, models.TransactionTypeRefund)
	if err != nil {
		return decimal.Zero, false, err
	}
	return change.After, true, nil
}

func (s *service) refunded(ctx context.Context, tx *models.Transaction, balance decimal.Decimal) {
	wallet.InvalidateUserCache(ctx, s.cache, tx.UserID)
	s.metrics.RecordCompensation(tx.Type)
	s.logger.Info("withdrawal refunded",
		zap.String("transaction_id", tx.TransactionID),
		zap.Int("attempt", tx.RetryCount),
		zap.String("amount", tx.Amount.String()))
	s.publish(ctx, events.TypeWalletCompensated, tx, balance)
}

func (s *service) callGateway(ctx context.Context, adapter gateway.Adapter, op string, req PaymentRequest, tx *models.Transaction) (*gateway.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()

	greq := gateway.Request{
		Method:    tx.PaymentMethod,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		UserID:    tx.UserID,
		Reference: tx.TransactionID,
		Account:   req.Account,
	}

	start := s.config.Now()
	var (
		result *gateway.Result
		err    error
	)
	if op == "payout" {
		result, err = adapter.Payout(callCtx, greq)
	} else {
		result, err = adapter.Charge(callCtx, greq)
	}

	outcome := OutcomeCompleted
	switch {
	case err != nil:
		outcome = OutcomeError
	case result == nil:
		err = fmt.Errorf("%s: %w: empty response", adapter.Name(), apperrors.ErrGatewayUnavailable)
		outcome = OutcomeError
	case !result.Success:
		outcome = OutcomeFailed
	}
	s.metrics.RecordGatewayCall(adapter.Name(), op, outcome, s.config.Now().Sub(start))
	if err != nil {
		s.logger.Warn("gateway call failed",
			zap.String("transaction_id", tx.TransactionID),
			zap.String("provider", adapter.Name()),
			zap.String("operation", op),
			zap.Error(err))
	}
	return result, err
}

// abandon finalizes tx as FAILED after an unexpected error and returns the
// error to surface.
func (s *service) abandon(ctx context.Context, tx *models.Transaction, cause error) error {
	s.logger.Error("transaction abandoned",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("type", string(tx.Type)),
		zap.Error(cause))
	if err := s.ledger.MarkFailed(ctx, tx, "internal error"); err != nil && !errors.Is(err, apperrors.ErrTransactionFinalized) {
		s.logger.Error("failed to finalize abandoned transaction",
			zap.String("transaction_id", tx.TransactionID),
			zap.Error(err))
	}
	s.metrics.RecordPayment(tx.Type, OutcomeError)
	return fmt.Errorf("transaction %s: %w", tx.TransactionID, cause)
}

func (s *service) afterSuccess(ctx context.Context, tx *models.Transaction, balance decimal.Decimal) {
	wallet.InvalidateUserCache(ctx, s.cache, tx.UserID)
	s.metrics.RecordPayment(tx.Type, OutcomeCompleted)
	s.publish(ctx, events.TypeTransactionCompleted, tx, balance)
}

func (s *service) afterFailure(ctx context.Context, tx *models.Transaction, balance decimal.Decimal) {
	wallet.InvalidateUserCache(ctx, s.cache, tx.UserID)
	s.metrics.RecordPayment(tx.Type, OutcomeFailed)
	s.publish(ctx, events.TypeTransactionFailed, tx, balance)
}

func (s *service) publish(ctx context.Context, eventType string, tx *models.Transaction, balance decimal.Decimal) {
	event := events.NewEvent(eventType, tx, balance, s.config.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("transaction_id", tx.TransactionID),
			zap.Error(err))
	}
}

// checkDebit runs the limit checks and the balance check for an outgoing
// movement.
func (s *service) checkDebit(w *models.Wallet, amount decimal.Decimal, txType models.TransactionType) error {
	if err := s.wallets.CheckLimits(w, amount, txType); err != nil {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return err
	}
	if w.Balance.LessThan(amount) {
		s.metrics.RecordPayment(txType, OutcomeRejected)
		return apperrors.ErrInsufficientBalance
	}
	return nil
}

func (s *service) failedError(tx *models.Transaction, balance decimal.Decimal, result *gateway.Result, callErr error) error {
	err := callErr
	if err == nil {
		err = fmt.Errorf("%w: %s", apperrors.ErrGatewayDeclined, failureReason(result, nil))
	}
	return &FailedError{
		TransactionID: tx.TransactionID,
		Balance:       balance,
		Retryable:     tx.RetryCount < tx.MaxRetries,
		Err:           err,
	}
}

func failureReason(result *gateway.Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if result != nil && result.Error != "" {
		return result.Error
	}
	return "gateway reported failure"
}

func gatewayResponse(r *gateway.Result) *models.GatewayResponse {
	if r == nil {
		return nil
	}
	return &models.GatewayResponse{
		Provider:      r.Provider,
		Success:       r.Success,
		TransactionID: r.TransactionID,
		Error:         r.Error,
		Raw:           r.Raw,
	}
}
