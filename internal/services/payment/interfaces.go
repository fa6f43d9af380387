package payment

import (
	"context"
	"time"

	"arenapay/internal/models"
	"arenapay/internal/services/gateway"
	"arenapay/internal/services/wallet"
)

// Service defines the payment service interface
type Service interface {
	// Gateway-backed movements
	Deposit(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	Withdraw(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	// Retry re-runs a FAILED deposit or withdrawal owned by userID.
	Retry(ctx context.Context, userID, transactionID string) (*PaymentResult, error)

	// Internal movements, no gateway involved
	AwardPrize(ctx context.Context, req PrizeRequest) (*PaymentResult, error)
	ChargeTournamentFee(ctx context.Context, req FeeRequest) (*PaymentResult, error)
	AdminAdjust(ctx context.Context, req AdjustmentRequest) (*PaymentResult, error)

	// Administrative wallet state
	SetVerificationStatus(ctx context.Context, userID string, status models.VerificationStatus) (*models.Wallet, error)
	SetSuspension(ctx context.Context, userID string, s wallet.Suspension) (*models.Wallet, error)
}

// Gateways resolves the adapter serving a payment method.
type Gateways interface {
	Resolve(method string) (gateway.Adapter, error)
}

// MetricsCollector defines the interface for collecting payment metrics
type MetricsCollector interface {
	RecordPayment(txType models.TransactionType, outcome string)
	RecordGatewayCall(provider, operation, outcome string, duration time.Duration)
	RecordCompensation(txType models.TransactionType)
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
}
