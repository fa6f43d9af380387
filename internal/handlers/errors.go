package handlers

import (
	"errors"
	"time"

	"arenapay/internal/middleware"
	"arenapay/internal/services/payment"
	"arenapay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors to responses. Gateway failures of an
// opened transaction carry its id and whether it may be retried.
func writeError(c *fiber.Ctx, err error) error {
	var failed *payment.FailedError
	if errors.As(err, &failed) {
		return response.Failed(c, failed.TransactionID, failed.Retryable, failed.Balance, failed.Err)
	}
	return response.Domain(c, err)
}

func currentUserID(c *fiber.Ctx) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 timestamps and plain dates. A plain end date
// covers its whole day.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func dateRange(c *fiber.Ctx) (from, to *time.Time, fields map[string]string) {
	fields = map[string]string{}
	from, err := parseDate(c.Query("startDate"), false)
	if err != nil {
		fields["startDate"] = "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
	}
	to, err = parseDate(c.Query("endDate"), true)
	if err != nil {
		fields["endDate"] = "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
	}
	if from != nil && to != nil && to.Before(*from) {
		fields["endDate"] = "must not be before startDate"
	}
	return from, to, fields
}
