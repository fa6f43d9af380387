package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	result := conn(ctx, r.db).Create(wallet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(ctx context.Context, wallet *models.Wallet) error {
	expected := wallet.Version
	wallet.Version++

	result := conn(ctx, r.db).
		Model(wallet).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(wallet)
	if result.Error != nil {
		wallet.Version = expected
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		wallet.Version = expected
		return apperrors.ErrConcurrentModification
	}
	return nil
}

func (r *walletRepository) GetTotalBalance(ctx context.Context) (WalletTotals, error) {
	var totals WalletTotals
	err := conn(ctx, r.db).Model(&models.Wallet{}).
		Select(`
			COUNT(*) AS wallets,
			COALESCE(SUM(balance), 0) AS balance,
			COALESCE(SUM(total_deposited), 0) AS total_deposited,
			COALESCE(SUM(total_withdrawn), 0) AS total_withdrawn,
			COALESCE(SUM(total_won), 0) AS total_won,
			COALESCE(SUM(total_spent), 0) AS total_spent
		`).
		Scan(&totals).Error
	if err != nil {
		return WalletTotals{}, fmt.Errorf("failed to get total balance: %w", err)
	}
	return totals, nil
}
