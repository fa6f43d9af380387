package wallet

import (
	"time"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds defaults applied to newly created wallets and the store's
// runtime settings.
type Config struct {
	DefaultCurrency             string
	DefaultDailyLimit           decimal.Decimal
	DefaultMonthlyLimit         decimal.Decimal
	DefaultMaxTransactionAmount decimal.Decimal

	// PersistAttempts bounds reload-and-reapply rounds on version conflicts.
	PersistAttempts int
	Location        *time.Location
	Now             func() time.Time
}

// BalanceChange is the balance before and after one mutation.
type BalanceChange struct {
	Before decimal.Decimal `json:"balanceBefore"`
	After  decimal.Decimal `json:"balanceAfter"`
}

// Suspension is the administrative restriction set on a wallet. A nil
// ExpiresAt suspends until lifted.
type Suspension struct {
	Suspended bool
	Reason    string
	ExpiresAt *time.Time
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordBalanceChange(usage models.TransactionType, amount decimal.Decimal)
	RecordLimitRejection(reason string)
	RecordConflict(operation string)
}
