package handlers

import (
	"time"

	"arenapay/internal/services/payment"
	"arenapay/internal/services/wallet"
	"arenapay/internal/utils/response"
	"arenapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves wallet administration. Routes are mounted behind
// AdminAuthMiddleware; :id is the wallet owner's user id.
type AdminHandler struct {
	payments   payment.Service
	reconciler *payment.Reconciler
}

func NewAdminHandler(payments payment.Service, reconciler *payment.Reconciler) *AdminHandler {
	return &AdminHandler{payments: payments, reconciler: reconciler}
}

// Reconciliation reports aggregate wallet totals and transactions not yet
// finalized.
func (h *AdminHandler) Reconciliation(c *fiber.Ctx) error {
	snapshot, err := h.reconciler.Snapshot(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Reconciliation snapshot", snapshot)
}

func (h *AdminHandler) SetVerification(c *fiber.Ctx) error {
	var input validation.VerificationRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Verification(&input)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	w, err := h.payments.SetVerificationStatus(c.UserContext(), c.Params("id"), input.Status)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Verification status updated", payment.NewWalletView(w))
}

func (h *AdminHandler) SetSuspension(c *fiber.Ctx) error {
	var input validation.SuspensionRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Suspension(&input)

	var expiresAt *time.Time
	if input.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, input.ExpiresAt)
		if err != nil {
			v.AddError("expiresAt", "must be an RFC 3339 timestamp")
		} else {
			expiresAt = &t
		}
	}
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	w, err := h.payments.SetSuspension(c.UserContext(), c.Params("id"), wallet.Suspension{
		Suspended: input.Suspended,
		Reason:    input.Reason,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Suspension updated", fiber.Map{
		"wallet":       payment.NewWalletView(w),
		"restrictions": w.Restrictions,
	})
}

// AdjustWallet credits or debits a wallet outside any payment flow.
func (h *AdminHandler) AdjustWallet(c *fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input validation.AdjustmentRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Adjustment(&input)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	result, err := h.payments.AdminAdjust(c.UserContext(), payment.AdjustmentRequest{
		UserID:    c.Params("id"),
		AdminID:   adminID,
		Amount:    input.Amount,
		Direction: input.Direction,
		Reason:    input.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Wallet adjusted", result)
}
