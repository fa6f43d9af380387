package transaction

import (
	"context"
	"time"

	"arenapay/internal/models"
	"arenapay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Ledger is the append-only record of monetary movements. State changes
// follow PENDING -> PROCESSING -> COMPLETED | FAILED, FAILED -> PENDING on
// retry, and PENDING -> CANCELLED. COMPLETED entries never change again.
type Ledger interface {
	Open(ctx context.Context, params OpenParams) (*models.Transaction, error)
	MarkProcessing(ctx context.Context, tx *models.Transaction) error
	MarkCompleted(ctx context.Context, tx *models.Transaction, gatewayTransactionID string, resp *models.GatewayResponse) error
	MarkFailed(ctx context.Context, tx *models.Transaction, reason string) error
	Cancel(ctx context.Context, tx *models.Transaction, reason string) error
	// Retry moves a FAILED entry back to PENDING and counts the attempt.
	Retry(ctx context.Context, tx *models.Transaction) error
	// Resume moves a FAILED entry whose provider step already succeeded
	// back to PENDING without counting an attempt.
	Resume(ctx context.Context, tx *models.Transaction) error
	// RefreshSnapshot records a new balance snapshot on a PENDING entry.
	RefreshSnapshot(ctx context.Context, tx *models.Transaction, before, after decimal.Decimal) error

	// RecordCompensation links a refund to the current attempt of tx. A
	// second refund for the same attempt returns ErrAlreadyCompensated.
	RecordCompensation(ctx context.Context, tx *models.Transaction, amount decimal.Decimal, reason string) (*models.Compensation, error)
	Compensations(ctx context.Context, transactionID string) ([]models.Compensation, error)

	Get(ctx context.Context, transactionID string) (*models.Transaction, error)
	List(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, int64, error)
	Summarize(ctx context.Context, userID string, from, to *time.Time) ([]models.TransactionSummary, error)
}
