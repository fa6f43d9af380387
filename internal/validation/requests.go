package validation

import (
	"fmt"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the body of a deposit or withdrawal.
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
	Account       string          `json:"account"`
	Description   string          `json:"description" validate:"max=255"`
}

// Payment validates deposit and withdrawal requests. Amounts carry at most
// two decimal places.
func (v *Validator) Payment(req *PaymentRequest) {
	v.Struct(req)
	v.cents("amount", req.Amount)
}

// PrizeRequest is the body of a tournament prize payout.
type PrizeRequest struct {
	UserID       string          `json:"userId" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	TournamentID string          `json:"tournamentId" validate:"required"`
	MatchID      string          `json:"matchId"`
	Placement    int             `json:"placement" validate:"gte=0"`
	Description  string          `json:"description" validate:"max=255"`
}

func (v *Validator) Prize(req *PrizeRequest) {
	v.Struct(req)
	v.cents("amount", req.Amount)
}

// FeeRequest is the body of a tournament entry fee charge.
type FeeRequest struct {
	UserID       string          `json:"userId" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	TournamentID string          `json:"tournamentId" validate:"required"`
	Description  string          `json:"description" validate:"max=255"`
}

func (v *Validator) Fee(req *FeeRequest) {
	v.Struct(req)
	v.cents("amount", req.Amount)
}

// AdjustmentRequest is the body of an administrative balance correction.
type AdjustmentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Direction string          `json:"direction" validate:"oneof=CREDIT DEBIT"`
	Reason    string          `json:"reason" validate:"required,max=500"`
}

func (v *Validator) Adjustment(req *AdjustmentRequest) {
	v.Struct(req)
	v.cents("amount", req.Amount)
}

// VerificationRequest sets a wallet's verification status.
type VerificationRequest struct {
	Status models.VerificationStatus `json:"status" validate:"required"`
}

func (v *Validator) Verification(req *VerificationRequest) {
	v.Struct(req)
	v.Check(req.Status == "" || req.Status.Valid(), "status",
		fmt.Sprintf("must be one of: %s %s %s %s",
			models.VerificationUnverified, models.VerificationPending,
			models.VerificationVerified, models.VerificationRejected))
}

// SuspensionRequest suspends or reinstates a wallet.
type SuspensionRequest struct {
	Suspended bool   `json:"suspended"`
	Reason    string `json:"reason" validate:"max=255"`
	// ExpiresAt is RFC 3339; empty suspends until lifted.
	ExpiresAt string `json:"expiresAt"`
}

func (v *Validator) Suspension(req *SuspensionRequest) {
	v.Struct(req)
	v.Check(!req.Suspended || req.Reason != "", "reason", "is required when suspending")
}

func (v *Validator) cents(field string, amount decimal.Decimal) {
	v.Check(amount.Exponent() >= -2 || amount.Equal(amount.Round(2)), field, "must have at most two decimal places")
}
