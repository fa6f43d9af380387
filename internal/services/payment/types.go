package payment

import (
	"fmt"
	"time"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for the payment service
type Config struct {
	// GatewayTimeout bounds every provider call.
	GatewayTimeout time.Duration
	Now            func() time.Time
}

// PaymentRequest is a deposit or withdrawal request.
type PaymentRequest struct {
	UserID        string
	Amount        decimal.Decimal
	PaymentMethod string
	// Account is the payer (deposit) or payee (withdrawal) handle at the
	// provider.
	Account     string
	Description string
	IPAddress   string
}

// PrizeRequest credits tournament winnings.
type PrizeRequest struct {
	UserID       string
	Amount       decimal.Decimal
	TournamentID string
	MatchID      string
	Placement    int
	Description  string
}

// FeeRequest debits a tournament entry fee.
type FeeRequest struct {
	UserID       string
	Amount       decimal.Decimal
	TournamentID string
	Description  string
}

// AdjustmentRequest is a manual balance correction by an administrator.
type AdjustmentRequest struct {
	UserID    string
	AdminID   string
	Amount    decimal.Decimal
	Direction string
	Reason    string
}

// PaymentResult is returned for a COMPLETED transaction.
type PaymentResult struct {
	TransactionID string                   `json:"transactionId"`
	Amount        decimal.Decimal          `json:"amount"`
	Balance       decimal.Decimal          `json:"balance"`
	Status        models.TransactionStatus `json:"status"`
}

// FailedError reports a transaction that was opened and then finalized as
// FAILED. Err wraps the gateway error kind.
type FailedError struct {
	TransactionID string
	Balance       decimal.Decimal
	Retryable     bool
	Err           error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.TransactionID, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}
