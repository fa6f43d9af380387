// Package routes defines the API routing configuration.
// It mounts the payment, admin and internal handlers with their
// authentication and permission middleware.
package routes

import (
	"net/http"

	"arenapay/internal/handlers"
	"arenapay/internal/middleware"
	"arenapay/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *middleware.AuthMiddleware
	Payment    *handlers.PaymentHandler
	Admin      *handlers.AdminHandler
	Tournament *handlers.TournamentHandler
	Health     *handlers.HealthHandler
	// Metrics serves the Prometheus exposition; nil leaves /metrics unmounted.
	Metrics http.Handler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.HealthCheck)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics))
	}

	payments := app.Group("/payments", h.Auth.Handler)

	setupAdminRoutes(payments, h.Admin)
	setupInternalRoutes(payments, h.Tournament)
	setupPlayerRoutes(payments, h.Payment)
}

func setupPlayerRoutes(router fiber.Router, h *handlers.PaymentHandler) {
	router.Get("/wallet", middleware.HasPermission(models.PermissionWalletRead), h.GetWallet)
	router.Post("/deposit", middleware.HasPermission(models.PermissionWalletWrite), h.Deposit)
	router.Post("/withdrawal", middleware.HasPermission(models.PermissionWalletWrite), h.Withdraw)

	txs := router.Group("/transactions")
	txs.Get("/", middleware.HasPermission(models.PermissionTransactionRead), h.GetTransactions)
	txs.Get("/summary", middleware.HasPermission(models.PermissionTransactionRead), h.GetTransactionSummary)
	txs.Get("/:id", middleware.HasPermission(models.PermissionTransactionRead), h.GetTransaction)
	txs.Post("/:id/retry", middleware.HasPermission(models.PermissionTransactionWrite), h.RetryTransaction)
}

func setupAdminRoutes(router fiber.Router, h *handlers.AdminHandler) {
	admin := router.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Get("/reconciliation", middleware.HasPermission(models.PermissionReadAdmin), h.Reconciliation)

	wallets := admin.Group("/wallets", middleware.HasPermission(models.PermissionWriteAdmin))
	wallets.Patch("/:id/verification", h.SetVerification)
	wallets.Patch("/:id/suspension", h.SetSuspension)
	wallets.Post("/:id/adjustment", h.AdjustWallet)
}

func setupInternalRoutes(router fiber.Router, h *handlers.TournamentHandler) {
	internal := router.Group("/internal", middleware.ServiceAuthMiddleware)

	internal.Post("/prizes", middleware.HasPermission(models.PermissionPayoutPrize), h.AwardPrize)
	internal.Post("/fees", middleware.HasPermission(models.PermissionChargeFee), h.ChargeFee)
}
