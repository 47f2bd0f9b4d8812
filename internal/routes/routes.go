package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rupeelink/rupeelink/internal/admin"
	"github.com/rupeelink/rupeelink/internal/config"
	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/fraud"
	"github.com/rupeelink/rupeelink/internal/ledger"
	"github.com/rupeelink/rupeelink/internal/middleware"
	"github.com/rupeelink/rupeelink/internal/notification"
	"github.com/rupeelink/rupeelink/internal/payments"
	"github.com/rupeelink/rupeelink/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. Store is
// built by the caller so the migration step and the daily reporter share
// the same instance.
type Deps struct {
	Cfg    config.Config
	Store  ledger.Store
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Alerts notification.Sink
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("ledger store is required")
	}
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	registry, err := currency.NewRegistry(config.ReferenceCurrency, d.Cfg.Rates)
	if err != nil {
		return fmt.Errorf("build currency registry: %w", err)
	}
	rules := fraud.Rules{
		LargeWithdrawalLimit: d.Cfg.LargeWithdrawalLimit,
		TransferWindow:       d.Cfg.TransferWindow,
		TransferThreshold:    d.Cfg.TransferThreshold,
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	engine := ledger.NewEngine(d.Store, registry, rules, d.Alerts, d.Logger)
	walletSvc := wallet.NewService(d.Store, registry)
	adminSvc := admin.NewService(d.Store, registry)

	walletHandler := wallet.NewHandler(walletSvc)
	paymentHandler := payments.NewHandler(engine)
	adminHandler := admin.NewHandler(adminSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Protected routes
	protected := api.Group("", middleware.Auth(d.Cfg.JWTSecret))
	RegisterWalletRoutes(protected, walletHandler)
	transferLimiter := middleware.TransferRateLimit(d.Cache, d.Cfg.TransferRatePerMin)
	RegisterPaymentRoutes(protected, paymentHandler, transferLimiter)

	// Admin routes
	adminGroup := api.Group("/admin", middleware.AdminKey(d.Cfg.AdminKeyHash))
	RegisterAdminRoutes(adminGroup, adminHandler)

	return nil
}
