package payment

import (
	"context"
	"fmt"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/services/wallet"

	"go.uber.org/zap"
)

func (s *service) Retry(ctx context.Context, userID, transactionID string) (*PaymentResult, error) {
	unlock := s.wallets.Lock(userID)
	defer unlock()

	tx, err := s.ledger.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, apperrors.ErrTransactionNotFound
	}
	if !tx.Type.UsesGateway() || tx.Status != models.TransactionStatusFailed {
		return nil, apperrors.ErrTransactionNotRetryable
	}

	detached := context.WithoutCancel(ctx)
	switch {
	case tx.Type == models.TransactionTypeDeposit && tx.GatewayTransactionID != "":
		// The provider already charged this deposit. Only the credit is
		// outstanding.
		return s.settleCharge(detached, tx)
	case tx.Type == models.TransactionTypeWithdrawal:
		if err := s.ensureRefunded(detached, tx); err != nil {
			return nil, err
		}
	}

	if tx.RetryCount >= tx.MaxRetries {
		return nil, apperrors.ErrMaxRetriesExceeded
	}

	adapter, err := s.gateways.Resolve(tx.PaymentMethod)
	if err != nil {
		return nil, err
	}

	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	req := requestFromTransaction(tx)

	if tx.Type == models.TransactionTypeWithdrawal {
		if err := s.checkDebit(w, tx.Amount, tx.Type); err != nil {
			return nil, err
		}
	} else if err := s.wallets.CheckLimits(w, tx.Amount, tx.Type); err != nil {
		return nil, err
	}

	after := w.Balance.Add(tx.Amount)
	if tx.Type == models.TransactionTypeWithdrawal {
		after = w.Balance.Sub(tx.Amount)
	}

	var change wallet.BalanceChange
	snapshot := *tx
	err = s.transactor.ExecuteInTransaction(detached, func(ctx context.Context) error {
		if err := s.ledger.Retry(ctx, tx); err != nil {
			return err
		}
		if err := s.ledger.RefreshSnapshot(ctx, tx, w.Balance, after); err != nil {
			return err
		}
		if tx.Type != models.TransactionTypeWithdrawal {
			return nil
		}
		var err error
		change, err = s.wallets.DeductFunds(ctx, w, tx.Amount, tx.Type)
		return err
	})
	unlock()
	if err != nil {
		*tx = snapshot
		return nil, err
	}

	if tx.Type == models.TransactionTypeDeposit {
		return s.executeDeposit(detached, adapter, tx, req)
	}
	return s.executeWithdrawal(detached, adapter, tx, req, change.After)
}

// settleCharge credits a FAILED deposit whose provider charge already
// succeeded. The charge is not repeated and no attempt is counted. The
// caller holds the user's lock.
func (s *service) settleCharge(ctx context.Context, tx *models.Transaction) (*PaymentResult, error) {
	var change wallet.BalanceChange
	snapshot := *tx
	err := s.transactor.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledger.Resume(ctx, tx); err != nil {
			return err
		}
		w, err := s.wallets.GetOrCreate(ctx, tx.UserID)
		if err != nil {
			return err
		}
		if err := s.ledger.RefreshSnapshot(ctx, tx, w.Balance, w.Balance.Add(tx.Amount)); err != nil {
			return err
		}
		if change, err = s.wallets.AddFunds(ctx, w, tx.Amount, models.TransactionTypeDeposit); err != nil {
			return err
		}
		return s.ledger.MarkCompleted(ctx, tx, tx.GatewayTransactionID, nil)
	})
	if err != nil {
		*tx = snapshot
		s.logger.Error("charged deposit still not credited",
			zap.String("transaction_id", tx.TransactionID),
			zap.String("gateway_transaction_id", tx.GatewayTransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("transaction %s: %w", tx.TransactionID, err)
	}

	s.logger.Info("charged deposit credited",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("gateway_transaction_id", tx.GatewayTransactionID))
	s.afterSuccess(ctx, tx, change.After)
	return &PaymentResult{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Balance:       change.After,
		Status:        tx.Status,
	}, nil
}

// requestFromTransaction rebuilds the provider request of a stored
// deposit or withdrawal.
func requestFromTransaction(tx *models.Transaction) PaymentRequest {
	req := PaymentRequest{
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		PaymentMethod: tx.PaymentMethod,
		Description:   tx.Description,
	}
	switch meta := tx.Meta.Meta.(type) {
	case models.DepositMeta:
		req.Account = meta.PayerAccount
		req.IPAddress = meta.IPAddress
	case models.WithdrawalMeta:
		req.Account = meta.PayeeAccount
		req.IPAddress = meta.IPAddress
	}
	return req
}
