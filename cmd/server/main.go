// Package main is the entry point for the application.
// It loads configuration, builds every dependency explicitly and serves
// the payments API until it receives a shutdown signal.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenapay/internal/config"
	"arenapay/internal/handlers"
	applogger "arenapay/internal/logger"
	"arenapay/internal/metrics"
	"arenapay/internal/middleware"
	"arenapay/internal/repositories"
	"arenapay/internal/repositories/cache"
	"arenapay/internal/routes"
	"arenapay/internal/services/events"
	"arenapay/internal/services/gateway"
	"arenapay/internal/services/notification"
	"arenapay/internal/services/payment"
	"arenapay/internal/services/transaction"
	"arenapay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	zl, err := applogger.New(config.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	db, err := repositories.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			zl.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		return err
	}
	zl.Info("connected to database", zap.String("host", cfg.Database.Host))

	// Redis read cache
	var (
		readCache cache.ReadCache = cache.Noop{}
		cachePing handlers.Pinger
	)
	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc := cache.NewCacheService(client, cfg.Redis.TTL, zl.Named("cache"))
		defer svc.Close()
		if err := svc.HealthCheck(ctx); err != nil {
			zl.Warn("redis unreachable, reads fall back to storage", zap.Error(err))
		}
		readCache, cachePing = svc, svc
	}

	// Kafka events
	var publisher events.Publisher = notification.NewService(zl.Named("notification"))
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zl.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(registry)

	// Services
	walletRepo := repositories.NewWalletRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)

	walletStore := wallet.NewStore(
		walletRepo,
		wallet.Config{
			DefaultCurrency:             cfg.Wallet.Currency,
			DefaultDailyLimit:           cfg.Wallet.DailyLimit,
			DefaultMonthlyLimit:         cfg.Wallet.MonthlyLimit,
			DefaultMaxTransactionAmount: cfg.Wallet.MaxTransactionAmount,
		},
		collector,
		zl.Named("wallet"),
	)
	ledger := transaction.NewLedger(
		transactionRepo,
		transaction.Config{MaxRetries: cfg.Wallet.MaxRetries},
		zl.Named("ledger"),
	)
	paymentService := payment.NewService(
		walletStore,
		ledger,
		repositories.NewTransactor(db),
		buildGateways(cfg.Gateway, zl),
		readCache,
		publisher,
		payment.Config{GatewayTimeout: cfg.Gateway.Timeout},
		collector,
		zl.Named("payment"),
	)
	queries := payment.NewQueries(walletStore, ledger, readCache, cfg.Redis.TTL, collector)

	// HTTP
	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Gateway.Timeout + 15*time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	moneyLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
	app.Use("/payments/deposit", moneyLimiter)
	app.Use("/payments/withdrawal", moneyLimiter)

	routes.SetupRoutes(app, routes.Handlers{
		Auth:       middleware.NewAuthMiddleware(cfg.JWTSecret, zl.Named("auth")),
		Payment:    handlers.NewPaymentHandler(paymentService, queries),
		Admin:      handlers.NewAdminHandler(paymentService, payment.NewReconciler(walletRepo, transactionRepo)),
		Tournament: handlers.NewTournamentHandler(paymentService),
		Health:     handlers.NewHealthHandler(db, cachePing),
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	// In-flight payments finish their gateway step before the pools close.
	return app.ShutdownWithTimeout(cfg.Gateway.Timeout + 5*time.Second)
}

// buildGateways registers an adapter per payment method. Mobile wallets go
// to the HTTP provider and cards to Stripe when they are configured;
// anything unconfigured is served by the simulator.
func buildGateways(cfg config.GatewayConfig, zl *zap.Logger) *gateway.Router {
	sim := func(name string) gateway.Adapter {
		return gateway.NewSimulated(gateway.SimulatedConfig{
			Name:        name,
			Latency:     cfg.SimLatency,
			FailureRate: cfg.SimFailureRate,
		})
	}

	router := gateway.NewRouter()
	for _, method := range []string{gateway.MethodBkash, gateway.MethodNagad} {
		if cfg.ProviderBaseURL != "" {
			router.Register(method, gateway.NewHTTPProvider(gateway.HTTPProviderConfig{
				Name:    method,
				BaseURL: cfg.ProviderBaseURL + "/" + method,
				APIKey:  cfg.ProviderAPIKey,
				Timeout: cfg.Timeout,
			}))
			continue
		}
		router.Register(method, sim(method))
	}

	if cfg.StripeSecretKey != "" {
		router.Register(gateway.MethodCard, gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeCurrency))
	} else {
		zl.Warn("STRIPE_SECRET_KEY not set, card payments are simulated")
		router.Register(gateway.MethodCard, sim(gateway.MethodCard))
	}
	router.Register(gateway.MethodInternal, sim(gateway.MethodInternal))

	zl.Info("payment gateways ready", zap.Strings("methods", router.Methods()))
	return router
}
