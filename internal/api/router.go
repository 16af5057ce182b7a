package api

import (
	"time"

	"swipespend/docs"
	"swipespend/internal/api/handlers"
	"swipespend/pkg/auth"
	"swipespend/pkg/config"
	"swipespend/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg *config.SyncConfig,
	authHandler *handlers.AuthHandler,
	plaidHandler *handlers.PlaidHandler,
	transactionHandler *handlers.TransactionHandler,
	categoryHandler *handlers.CategoryHandler,
	userHandler *handlers.UserHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Device-Platform",
	}))
	app.Use(logger.New())

	// Importing the docs package registers the swagger document via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Provider webhook (public: the provider authenticates with the item id,
	// not a user session)
	app.Post("/api/plaid/transactions/updates", plaidHandler.Webhook)

	// Protected routes
	protected := app.Group("/api", middleware.AuthMiddleware(jwtManager, appLogger))

	plaid := protected.Group("/plaid")
	plaid.Post("/link/token/create", plaidHandler.CreateLinkToken)
	plaid.Post("/exchange-public-token", plaidHandler.ExchangePublicToken)
	plaid.Post("/item/remove", plaidHandler.RemoveItem)
	plaid.Get("/is-bank-connected", plaidHandler.IsBankConnected)
	// The orchestrator enforces no rate limit itself; the manual trigger is
	// throttled here, per user.
	plaid.Post("/transactions/sync",
		perUserLimiter(1, cfg.ManualMinInterval),
		perUserLimiter(cfg.ManualPerHour, time.Hour),
		plaidHandler.Sync)

	transactions := protected.Group("/transactions")
	transactions.Get("", transactionHandler.List)
	transactions.Get("/uncategorized", transactionHandler.Uncategorized)
	transactions.Get("/categorized", transactionHandler.Categorized)
	transactions.Get("/export", transactionHandler.Export)
	transactions.Post("/categorize", transactionHandler.Categorize)
	transactions.Post("/uncategorize", transactionHandler.Uncategorize)

	categories := protected.Group("/categories")
	categories.Get("", categoryHandler.List)
	categories.Get("/manage", categoryHandler.ListManageable)
	categories.Post("", categoryHandler.Create)
	categories.Put("/:categoryId", categoryHandler.Update)
	categories.Delete("/:categoryId", categoryHandler.Delete)

	user := protected.Group("/user")
	user.Get("/progress", userHandler.Progress)
	user.Post("/currency", userHandler.UpdateCurrency)
	user.Post("/walkthrough-complete", userHandler.CompleteWalkthrough)

	return app
}

// perUserLimiter throttles a route per authenticated user.
func perUserLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("userID").(string); ok && userID != "" {
				return userID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many sync requests, try again later",
			})
		},
	})
}
