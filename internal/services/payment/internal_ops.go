package payment

import (
	"context"
	"fmt"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/services/transaction"
	"arenapay/internal/services/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// internalMovement is a balance change that settles immediately without a
// provider call.
type internalMovement struct {
	userID      string
	txType      models.TransactionType
	amount      decimal.Decimal
	credit      bool
	checkLimits bool
	description string
	meta        models.Meta
}

func (s *service) AwardPrize(ctx context.Context, req PrizeRequest) (*PaymentResult, error) {
	if req.TournamentID == "" {
		return nil, fmt.Errorf("%w: missing tournament id", apperrors.ErrInvalidTransaction)
	}
	return s.settleInternal(ctx, internalMovement{
		userID:      req.UserID,
		txType:      models.TransactionTypePrizeWin,
		amount:      req.Amount,
		credit:      true,
		checkLimits: true,
		description: req.Description,
		meta: models.PrizeMeta{
			TournamentID: req.TournamentID,
			MatchID:      req.MatchID,
			Placement:    req.Placement,
		},
	})
}

func (s *service) ChargeTournamentFee(ctx context.Context, req FeeRequest) (*PaymentResult, error) {
	if req.TournamentID == "" {
		return nil, fmt.Errorf("%w: missing tournament id", apperrors.ErrInvalidTransaction)
	}
	return s.settleInternal(ctx, internalMovement{
		userID:      req.UserID,
		txType:      models.TransactionTypeTournamentFee,
		amount:      req.Amount,
		credit:      false,
		checkLimits: true,
		description: req.Description,
		meta:        models.FeeMeta{TournamentID: req.TournamentID},
	})
}

func (s *service) AdminAdjust(ctx context.Context, req AdjustmentRequest) (*PaymentResult, error) {
	if req.AdminID == "" || req.Reason == "" {
		return nil, fmt.Errorf("%w: adjustments need an admin and a reason", apperrors.ErrInvalidTransaction)
	}
	var credit bool
	switch req.Direction {
	case models.AdjustmentCredit:
		credit = true
	case models.AdjustmentDebit:
		credit = false
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", apperrors.ErrInvalidTransaction, req.Direction)
	}

	result, err := s.settleInternal(ctx, internalMovement{
		userID:      req.UserID,
		txType:      models.TransactionTypeAdminAdjustment,
		amount:      req.Amount,
		credit:      credit,
		description: req.Reason,
		meta: models.AdjustmentMeta{
			AdminID:   req.AdminID,
			Reason:    req.Reason,
			Direction: req.Direction,
		},
	})
	if err == nil {
		s.logger.Info("wallet adjusted by admin",
			zap.String("user_id", req.UserID),
			zap.String("admin_id", req.AdminID),
			zap.String("direction", req.Direction),
			zap.String("amount", req.Amount.String()))
	}
	return result, err
}

// settleInternal opens, applies and completes m while holding the user's
// lock for the whole sequence. The balance change and the completion
// commit together.
func (s *service) settleInternal(ctx context.Context, m internalMovement) (*PaymentResult, error) {
	if !m.amount.IsPositive() {
		s.metrics.RecordPayment(m.txType, OutcomeRejected)
		return nil, apperrors.ErrInvalidAmount
	}

	unlock := s.wallets.Lock(m.userID)
	defer unlock()

	w, err := s.wallets.GetOrCreate(ctx, m.userID)
	if err != nil {
		return nil, err
	}
	if m.checkLimits {
		if err := s.wallets.CheckLimits(w, m.amount, m.txType); err != nil {
			s.metrics.RecordPayment(m.txType, OutcomeRejected)
			return nil, err
		}
	}
	if !m.credit && w.Balance.LessThan(m.amount) {
		s.metrics.RecordPayment(m.txType, OutcomeRejected)
		return nil, apperrors.ErrInsufficientBalance
	}

	after := w.Balance.Sub(m.amount)
	if m.credit {
		after = w.Balance.Add(m.amount)
	}
	tx, err := s.ledger.Open(ctx, transaction.OpenParams{
		UserID:         m.userID,
		Type:           m.txType,
		Amount:         m.amount,
		Currency:       w.Currency,
		PaymentGateway: transaction.GatewayInternal,
		Description:    m.description,
		Meta:           m.meta,
		BalanceBefore:  w.Balance,
		BalanceAfter:   after,
	})
	if err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	var change wallet.BalanceChange
	snapshot := *tx
	err = s.transactor.ExecuteInTransaction(detached, func(ctx context.Context) error {
		var err error
		if m.credit {
			change, err = s.wallets.AddFunds(ctx, w, m.amount, m.txType)
		} else {
			change, err = s.wallets.DeductFunds(ctx, w, m.amount, m.txType)
		}
		if err != nil {
			return err
		}
		return s.ledger.MarkCompleted(ctx, tx, "", nil)
	})
	if err != nil {
		*tx = snapshot
		return nil, s.abandon(detached, tx, err)
	}

	s.afterSuccess(detached, tx, change.After)
	return &PaymentResult{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Balance:       change.After,
		Status:        tx.Status,
	}, nil
}

func (s *service) SetVerificationStatus(ctx context.Context, userID string, status models.VerificationStatus) (*models.Wallet, error) {
	w, err := s.wallets.SetVerificationStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	wallet.InvalidateUserCache(ctx, s.cache, userID)
	return w, nil
}

func (s *service) SetSuspension(ctx context.Context, userID string, sus wallet.Suspension) (*models.Wallet, error) {
	w, err := s.wallets.SetSuspension(ctx, userID, sus)
	if err != nil {
		return nil, err
	}
	wallet.InvalidateUserCache(ctx, s.cache, userID)
	return w, nil
}
