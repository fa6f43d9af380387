package handlers

import (
	"context"

	"arenapay/internal/models"
	"arenapay/internal/repositories"
	"arenapay/internal/services/payment"
	"arenapay/internal/utils/pagination"
	"arenapay/internal/utils/response"
	"arenapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments payment.Service
	queries  *payment.Queries
}

func NewPaymentHandler(payments payment.Service, queries *payment.Queries) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		queries:  queries,
	}
}

// GetWallet returns the caller's wallet, creating it on first access.
func (h *PaymentHandler) GetWallet(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	view, err := h.queries.Wallet(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Wallet retrieved", view)
}

func (h *PaymentHandler) Deposit(c *fiber.Ctx) error {
	return h.move(c, h.payments.Deposit, "Deposit successful")
}

func (h *PaymentHandler) Withdraw(c *fiber.Ctx) error {
	return h.move(c, h.payments.Withdraw, "Withdrawal successful")
}

type movement func(ctx context.Context, req payment.PaymentRequest) (*payment.PaymentResult, error)

func (h *PaymentHandler) move(c *fiber.Ctx, run movement, message string) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input validation.PaymentRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Payment(&input)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	result, err := run(c.UserContext(), payment.PaymentRequest{
		UserID:        userID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Account:       input.Account,
		Description:   input.Description,
		IPAddress:     c.IP(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, message, result)
}

// GetTransactions lists the caller's transactions, newest first.
func (h *PaymentHandler) GetTransactions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	from, to, fields := dateRange(c)
	txType := models.TransactionType(c.Query("type"))
	if txType != "" && !txType.Valid() {
		fields["type"] = "unknown transaction type"
	}
	status := models.TransactionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		fields["status"] = "unknown transaction status"
	}
	if len(fields) > 0 {
		return response.ValidationErrors(c, fields)
	}

	p := pagination.ParseFromRequest(c)
	page, err := h.queries.Transactions(c.UserContext(), repositories.TransactionFilter{
		UserID:    userID,
		Type:      txType,
		Status:    status,
		StartDate: from,
		EndDate:   to,
		Limit:     p.Limit,
		Offset:    p.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	p.Total = page.Total
	return c.JSON(pagination.Response(p, page.Transactions))
}

func (h *PaymentHandler) GetTransactionSummary(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	from, to, fields := dateRange(c)
	if len(fields) > 0 {
		return response.ValidationErrors(c, fields)
	}

	summary, err := h.queries.Summary(c.UserContext(), userID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Transaction summary", summary)
}

func (h *PaymentHandler) GetTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	tx, err := h.queries.Transaction(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Transaction retrieved", tx)
}

// RetryTransaction re-runs a failed deposit or withdrawal of the caller.
func (h *PaymentHandler) RetryTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c)
	}

	result, err := h.payments.Retry(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Retry successful", result)
}
