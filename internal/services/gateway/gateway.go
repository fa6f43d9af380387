// Package gateway abstracts the external payment providers used for
// deposits and withdrawals.
//
// Adapters report provider-side business failures (declined, provider
// rejected the payout) as a Result with Success false and a nil error.
// A non-nil error means the outcome is unknown at the transport level and
// wraps ErrGatewayUnavailable or ErrGatewayTimeout. Adapters never retry.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	apperrors "arenapay/internal/errors"

	"github.com/shopspring/decimal"
)

// Payment methods accepted by the router.
const (
	MethodBkash    = "bkash"
	MethodNagad    = "nagad"
	MethodCard     = "card"
	MethodInternal = "internal"
)

// Request is one charge or payout.
type Request struct {
	Method   string
	Amount   decimal.Decimal
	Currency string
	UserID   string
	// Reference is the ledger transaction id, sent as the idempotency key.
	Reference string
	// Account is the payer or payee handle at the provider, e.g. a wallet
	// phone number, a Stripe payment method or a connected account.
	Account string
}

// Result is the provider's answer.
type Result struct {
	Success       bool                   `json:"success"`
	TransactionID string                 `json:"transactionId,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Provider      string                 `json:"provider"`
	Raw           map[string]interface{} `json:"raw,omitempty"`
}

// Adapter is implemented by every payment provider client.
type Adapter interface {
	Name() string
	Charge(ctx context.Context, req Request) (*Result, error)
	Payout(ctx context.Context, req Request) (*Result, error)
}

// transportError classifies a failed call as a timeout or as the provider
// being unreachable.
func transportError(provider string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", provider, apperrors.ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", provider, apperrors.ErrGatewayUnavailable, err)
}
