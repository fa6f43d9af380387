package repositories

import (
	"context"
	"time"

	"arenapay/internal/models"
)

// TransactionFilter narrows a per-user transaction listing. Zero values
// disable the corresponding filter.
type TransactionFilter struct {
	UserID    string
	Type      models.TransactionType
	Status    models.TransactionStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// TransactionRepository persists ledger records and their compensations.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// Update rewrites a transaction that is not yet COMPLETED or CANCELLED.
	// Finalized rows return ErrTransactionFinalized.
	Update(ctx context.Context, tx *models.Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error)
	// Summarize aggregates COMPLETED transactions per type.
	Summarize(ctx context.Context, userID string, from, to *time.Time) ([]models.TransactionSummary, error)
	CountByStatus(ctx context.Context, statuses ...models.TransactionStatus) (int64, error)

	CreateCompensation(ctx context.Context, c *models.Compensation) error
	ListCompensations(ctx context.Context, transactionID string) ([]models.Compensation, error)
}
