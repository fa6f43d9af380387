package transaction

import (
	"time"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// OpenParams describes a new ledger entry. BalanceBefore and BalanceAfter
// are the wallet snapshot valid when the entry is opened.
type OpenParams struct {
	UserID         string
	Type           models.TransactionType
	Amount         decimal.Decimal
	Fees           decimal.Decimal
	Currency       string
	PaymentMethod  string
	PaymentGateway string
	Description    string
	Meta           models.Meta
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	// MaxRetries overrides the ledger default when positive.
	MaxRetries int
}

// Config holds configuration for the ledger
type Config struct {
	MaxRetries int
	Now        func() time.Time
}
