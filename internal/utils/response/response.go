package response

import (
	"errors"

	apperrors "arenapay/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "Insufficient permissions")
}

// ValidationErrors reports per-field validation failures.
func ValidationErrors(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"code":   "VALIDATION_FAILED",
		"fields": fields,
	})
}

// Domain writes err with its domain code and status. Errors without a
// domain kind become a generic 500 so internals never reach the client.
func Domain(c *fiber.Ctx, err error) error {
	de, ok := apperrors.AsDomain(err)
	if !ok {
		return ServerError(c, "internal server error")
	}
	status := de.Status
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"error": de.Message,
		"code":  de.Code,
	})
}

// Failed writes a transaction that was opened and then failed at the
// gateway. The body carries the transaction id so the client can retry it.
func Failed(c *fiber.Ctx, transactionID string, retryable bool, balance interface{}, err error) error {
	status := fiber.StatusBadGateway
	body := fiber.Map{
		"error":         "payment failed",
		"transactionId": transactionID,
		"retryable":     retryable,
		"balance":       balance,
	}
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		status = de.Status
		body["error"] = de.Message
		body["code"] = de.Code
	}
	return c.Status(status).JSON(body)
}
