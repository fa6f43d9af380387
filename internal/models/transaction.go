package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal      TransactionType = "WITHDRAWAL"
	TransactionTypePrizeWin        TransactionType = "PRIZE_WIN"
	TransactionTypeTournamentFee   TransactionType = "TOURNAMENT_FEE"
	TransactionTypeRefund          TransactionType = "REFUND"
	TransactionTypeAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePrizeWin,
		TransactionTypeTournamentFee, TransactionTypeRefund, TransactionTypeAdminAdjustment:
		return true
	}
	return false
}

// UsesGateway reports whether movements of this type go through an
// external payment provider.
func (t TransactionType) UsesGateway() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusProcessing, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends an attempt.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

const DefaultMaxRetries = 3

type Transaction struct {
	ID            uint              `gorm:"primarykey" json:"-"`
	TransactionID string            `gorm:"uniqueIndex;size:64;not null" json:"transactionId"`
	UserID        string            `gorm:"index;size:64;not null" json:"userId"`
	Type          TransactionType   `gorm:"size:32;not null;index" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	Fees          decimal.Decimal   `gorm:"type:numeric(20,2);not null;default:0" json:"fees"`
	NetAmount     decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"netAmount"`
	Currency      string            `gorm:"size:8;not null" json:"currency"`
	Status        TransactionStatus `gorm:"size:16;not null;index" json:"status"`
	Description   string            `gorm:"size:255" json:"description,omitempty"`

	PaymentMethod        string           `gorm:"size:32" json:"paymentMethod,omitempty"`
	PaymentGateway       string           `gorm:"size:32" json:"paymentGateway,omitempty"`
	GatewayTransactionID string           `gorm:"size:128" json:"gatewayTransactionId,omitempty"`
	GatewayResponse      *GatewayResponse `gorm:"type:jsonb" json:"gatewayResponse,omitempty"`
	Meta                 TransactionMeta  `gorm:"type:jsonb" json:"meta"`

	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balanceAfter"`

	RetryCount    int        `gorm:"not null;default:0" json:"retryCount"`
	MaxRetries    int        `gorm:"not null" json:"maxRetries"`
	FailureReason string     `gorm:"size:512" json:"failureReason,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	FailedAt      *time.Time `json:"failedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewTransaction builds a PENDING transaction with a fresh id and the net
// amount derived from amount and fees.
func NewTransaction(userID string, txType TransactionType, amount, fees decimal.Decimal) *Transaction {
	return &Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Fees:          fees,
		NetAmount:     amount.Sub(fees),
		Status:        TransactionStatusPending,
		MaxRetries:    DefaultMaxRetries,
	}
}

// Compensation records the refund issued for one failed attempt of a
// transaction. (TransactionID, Attempt) is unique.
type Compensation struct {
	ID            uint            `gorm:"primarykey" json:"-"`
	TransactionID string          `gorm:"size:64;not null;uniqueIndex:idx_compensation_attempt" json:"transactionId"`
	Attempt       int             `gorm:"not null;uniqueIndex:idx_compensation_attempt" json:"attempt"`
	UserID        string          `gorm:"size:64;not null;index" json:"userId"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Reason        string          `gorm:"size:512" json:"reason"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransactionSummary is one row of a per-type aggregation.
type TransactionSummary struct {
	Type           TransactionType `json:"type"`
	Count          int64           `json:"count"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalNetAmount decimal.Decimal `json:"totalNetAmount"`
	TotalFees      decimal.Decimal `json:"totalFees"`
}
