package payment

import (
	"context"
	"fmt"
	"time"

	"arenapay/internal/models"
	"arenapay/internal/repositories"
)

// Reconciliation is an operator snapshot of the whole ledger.
type Reconciliation struct {
	Wallets  repositories.WalletTotals `json:"wallets"`
	InFlight int64                     `json:"inFlight"`
	TakenAt  time.Time                 `json:"takenAt"`
}

// Reconciler reads aggregate balances and counts transactions still open.
// A non-zero InFlight with no traffic points at an attempt that was never
// finalized.
type Reconciler struct {
	wallets      repositories.WalletRepository
	transactions repositories.TransactionRepository
	now          func() time.Time
}

func NewReconciler(wallets repositories.WalletRepository, transactions repositories.TransactionRepository) *Reconciler {
	return &Reconciler{
		wallets:      wallets,
		transactions: transactions,
		now:          time.Now,
	}
}

func (r *Reconciler) Snapshot(ctx context.Context) (*Reconciliation, error) {
	totals, err := r.wallets.GetTotalBalance(ctx)
	if err != nil {
		return nil, err
	}
	open, err := r.transactions.CountByStatus(ctx,
		models.TransactionStatusPending,
		models.TransactionStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("failed to count open transactions: %w", err)
	}
	return &Reconciliation{
		Wallets:  totals,
		InFlight: open,
		TakenAt:  r.now().UTC(),
	}, nil
}
