package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	cache Pinger
}

// NewHealthHandler creates the health handler. cache may be nil when
// Redis is disabled.
func NewHealthHandler(db *gorm.DB, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{}

	services["database"] = "connected"
	if err := h.pingDB(ctx); err != nil {
		services["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	switch {
	case h.cache == nil:
		services["redis"] = "disabled"
	case h.cache.HealthCheck(ctx) != nil:
		// The cache is optional; reads fall back to storage.
		services["redis"] = "unavailable"
	default:
		services["redis"] = "connected"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"version":  "1.0.0",
		"services": services,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
