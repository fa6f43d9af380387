package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// DailyUsage accumulates withdrawal volume for a single calendar date.
type DailyUsage struct {
	Amount decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"amount"`
	Date   time.Time       `json:"date"`
}

// MonthlyUsage accumulates withdrawal volume for a single YYYY-MM month.
type MonthlyUsage struct {
	Amount decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"amount"`
	Month  string          `gorm:"size:7" json:"month"`
}

type Restrictions struct {
	IsSuspended         bool       `gorm:"not null;default:false" json:"isSuspended"`
	SuspensionReason    string     `gorm:"size:255" json:"suspensionReason,omitempty"`
	SuspensionExpiresAt *time.Time `json:"suspensionExpiresAt,omitempty"`
}

// SuspendedAt reports whether the suspension is in force at now. A
// suspension without an expiry never lapses.
func (r Restrictions) SuspendedAt(now time.Time) bool {
	if !r.IsSuspended {
		return false
	}
	return r.SuspensionExpiresAt == nil || now.Before(*r.SuspensionExpiresAt)
}

type Wallet struct {
	ID       uint            `gorm:"primarykey" json:"-"`
	UserID   string          `gorm:"uniqueIndex;size:64;not null" json:"userId"`
	Balance  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	Currency string          `gorm:"size:8;not null;default:'BDT'" json:"currency"`

	TotalDeposited decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"totalDeposited"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"totalWithdrawn"`
	TotalWon       decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"totalWon"`
	TotalSpent     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"totalSpent"`

	DailyUsage   DailyUsage   `gorm:"embedded;embeddedPrefix:daily_usage_" json:"dailyUsage"`
	MonthlyUsage MonthlyUsage `gorm:"embedded;embeddedPrefix:monthly_usage_" json:"monthlyUsage"`

	DailyLimit           decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"dailyLimit"`
	MonthlyLimit         decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"monthlyLimit"`
	MaxTransactionAmount decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"maxTransactionAmount"`

	VerificationStatus VerificationStatus `gorm:"size:16;not null;default:'UNVERIFIED'" json:"verificationStatus"`
	Restrictions       Restrictions       `gorm:"embedded;embeddedPrefix:restriction_" json:"restrictions"`
	IsActive           bool               `gorm:"not null;default:true" json:"isActive"`

	// Version is bumped on every persisted mutation and checked on update.
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep enough copy for snapshot and rollback purposes.
func (w *Wallet) Clone() *Wallet {
	c := *w
	if w.Restrictions.SuspensionExpiresAt != nil {
		t := *w.Restrictions.SuspensionExpiresAt
		c.Restrictions.SuspensionExpiresAt = &t
	}
	return &c
}
