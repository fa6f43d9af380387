package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := conn(ctx, r.db).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	result := conn(ctx, r.db).
		Model(tx).
		Where("status NOT IN ?", []models.TransactionStatus{
			models.TransactionStatusCompleted,
			models.TransactionStatusCancelled,
		}).
		Select("*").
		Omit("id", "transaction_id", "created_at").
		Updates(tx)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionFinalized
	}
	return nil
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := conn(ctx, r.db).Where("transaction_id = ?", transactionID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := conn(ctx, r.db).Model(&models.Transaction{}).Where("user_id = ?", filter.UserID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = withCreatedRange(query, filter.StartDate, filter.EndDate)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var transactions []models.Transaction
	err := query.Order("created_at DESC").Find(&transactions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, total, nil
}

func (r *transactionRepository) Summarize(ctx context.Context, userID string, from, to *time.Time) ([]models.TransactionSummary, error) {
	query := conn(ctx, r.db).Model(&models.Transaction{}).
		Where("user_id = ? AND status = ?", userID, models.TransactionStatusCompleted)
	query = withCreatedRange(query, from, to)

	var rows []models.TransactionSummary
	err := query.
		Select(`
			type,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(net_amount), 0) AS total_net_amount,
			COALESCE(SUM(fees), 0) AS total_fees
		`).
		Group("type").
		Order("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	return rows, nil
}

func (r *transactionRepository) CountByStatus(ctx context.Context, statuses ...models.TransactionStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Transaction{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) CreateCompensation(ctx context.Context, c *models.Compensation) error {
	if err := conn(ctx, r.db).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyCompensated
		}
		return fmt.Errorf("failed to create compensation: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListCompensations(ctx context.Context, transactionID string) ([]models.Compensation, error) {
	var comps []models.Compensation
	err := conn(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		Order("attempt ASC").
		Find(&comps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	return comps, nil
}

func withCreatedRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return query
}
