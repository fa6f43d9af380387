package repositories

import (
	"context"
	"errors"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

var ErrDuplicateWallet = errors.New("wallet already exists")

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	// Create inserts a new wallet. A wallet for the same user returns
	// ErrDuplicateWallet.
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	// Update persists every column of wallet if the stored version still
	// matches wallet.Version, then bumps the version.
	Update(ctx context.Context, wallet *models.Wallet) error

	// Analytics
	GetTotalBalance(ctx context.Context) (WalletTotals, error)
}

// WalletTotals aggregates balances and lifetime counters across all wallets.
type WalletTotals struct {
	Wallets        int64           `json:"wallets"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
	TotalWon       decimal.Decimal `json:"totalWon"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
}
