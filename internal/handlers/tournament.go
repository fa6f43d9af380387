package handlers

import (
	"arenapay/internal/services/payment"
	"arenapay/internal/utils/response"
	"arenapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TournamentHandler receives prize payouts and entry fee charges from the
// tournament service.
type TournamentHandler struct {
	payments payment.Service
}

func NewTournamentHandler(payments payment.Service) *TournamentHandler {
	return &TournamentHandler{payments: payments}
}

func (h *TournamentHandler) AwardPrize(c *fiber.Ctx) error {
	var input validation.PrizeRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Prize(&input)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	result, err := h.payments.AwardPrize(c.UserContext(), payment.PrizeRequest{
		UserID:       input.UserID,
		Amount:       input.Amount,
		TournamentID: input.TournamentID,
		MatchID:      input.MatchID,
		Placement:    input.Placement,
		Description:  input.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, "Prize awarded", result)
}

func (h *TournamentHandler) ChargeFee(c *fiber.Ctx) error {
	var input validation.FeeRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Fee(&input)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	result, err := h.payments.ChargeTournamentFee(c.UserContext(), payment.FeeRequest{
		UserID:       input.UserID,
		Amount:       input.Amount,
		TournamentID: input.TournamentID,
		Description:  input.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, "Entry fee charged", result)
}
