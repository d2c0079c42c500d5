// Package routes defines the API routing configuration.
// It wires repositories, services and handlers, and applies authentication
// middleware to the protected groups.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vestra/internal/config"
	"vestra/internal/handlers"
	"vestra/internal/middleware"
	"vestra/internal/repositories"
	"vestra/internal/services/ledger"
	"vestra/internal/services/verification"
)

// SetupRoutes configures all application routes and returns the ledger
// service so the caller can attach the accrual scheduler to it.
func SetupRoutes(app *fiber.App, db *gorm.DB) ledger.Service {
	// Initialize repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// Initialize services
	ledgerService := ledger.NewService(
		ledgerRepo,
		repositories.CacheService,
		ledger.Config{
			LockTimeout:   config.GetDurationEnv("LEDGER_LOCK_TIMEOUT", ledger.DefaultLockTimeout),
			AccrualPeriod: config.GetDurationEnv("LEDGER_ACCRUAL_PERIOD", ledger.DefaultAccrualPeriod),
		},
		nil,
	)
	verificationService := verification.NewService(verificationRepo, verification.Config{
		CodeLength: config.GetIntEnv("VERIFICATION_CODE_LENGTH", verification.DefaultCodeLength),
		TTL:        config.GetDurationEnv("VERIFICATION_CODE_TTL", verification.DefaultTTL),
	})

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	investmentHandler := handlers.NewInvestmentHandler(ledgerService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)

	app.Get("/health", handlers.HealthCheck)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Vestra API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/verification/request", verificationHandler.Request)
	api.Post("/verification/verify", verificationHandler.Verify)
	api.Get("/plans", ledgerHandler.GetPlans)

	// Protected routes
	protected := api.Use(middleware.AuthMiddleware)

	setupWalletRoutes(protected, ledgerHandler)
	setupInvestmentRoutes(protected, investmentHandler)
	setupAdminRoutes(app, investmentHandler)

	return ledgerService
}

func setupWalletRoutes(router fiber.Router, h *handlers.LedgerHandler) {
	wallet := router.Group("/wallets")
	wallet.Post("/", h.ProvisionWallets)
	wallet.Get("/", h.GetWallets)
	wallet.Get("/:kind", h.GetWallet)
	wallet.Post("/deposit", h.Deposit)
	wallet.Post("/withdraw", h.Withdraw)
	wallet.Post("/transfer", h.Transfer)

	router.Get("/transactions", h.GetTransactions)
}

func setupInvestmentRoutes(router fiber.Router, h *handlers.InvestmentHandler) {
	investments := router.Group("/investments")
	investments.Post("/", h.Create)
	investments.Get("/", h.List)
	investments.Get("/:id", h.Get)
	investments.Post("/:id/cancel", h.Cancel)
}

func setupAdminRoutes(app *fiber.App, h *handlers.InvestmentHandler) {
	admin := app.Group("/api/admin", middleware.AuthMiddleware, middleware.AdminAuthMiddleware)

	admin.Post("/investments/:id/suspend", h.Suspend)
	admin.Post("/investments/:id/resume", h.Resume)
	admin.Post("/investments/:id/complete", h.Complete)
	admin.Post("/investments/:id/accrue", h.Accrue)
	admin.Post("/accruals/run", h.AccrueDue)
}
