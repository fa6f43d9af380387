package wallet

import (
	"context"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// Store defines the wallet store interface
type Store interface {
	// Lock serializes wallet access for one user and returns the release
	// function. Releasing twice is a no-op.
	Lock(userID string) (unlock func())

	// GetOrCreate always reads storage, creating the wallet with zero
	// balances and default limits on first use.
	GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error)

	// CheckLimits reports the first limit w violates for amount.
	CheckLimits(w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) error

	// Balance mutations. w is updated in place to the persisted state.
	AddFunds(ctx context.Context, w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) (BalanceChange, error)
	DeductFunds(ctx context.Context, w *models.Wallet, amount decimal.Decimal, usage models.TransactionType) (BalanceChange, error)

	// Administrative state
	SetVerificationStatus(ctx context.Context, userID string, status models.VerificationStatus) (*models.Wallet, error)
	SetSuspension(ctx context.Context, userID string, s Suspension) (*models.Wallet, error)
}
