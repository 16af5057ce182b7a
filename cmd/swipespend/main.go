package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"swipespend/internal/api"
	"swipespend/internal/api/handlers"
	"swipespend/internal/provider"
	"swipespend/internal/repository"
	"swipespend/internal/service"
	"swipespend/pkg/auth"
	"swipespend/pkg/config"
	"swipespend/pkg/logger"
	"swipespend/pkg/postgres"

	"go.uber.org/zap"
)

// @title SwipeSpend API
// @version 1.0
// @description Bank transaction sync and swipe-to-categorize backend.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting SwipeSpend service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	transactionRepo := repository.NewTransactionRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize provider client
	plaidClient := provider.NewPlaidClient(&cfg.Plaid, appLogger)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo, appLogger)
	syncService := service.NewSyncService(userRepo, categoryRepo, transactionRepo, plaidClient, appLogger)
	plaidService := service.NewPlaidService(userRepo, plaidClient, categoryService, syncService, appLogger)
	userService := service.NewUserService(userRepo, appLogger)

	// Background sync scheduler
	if cfg.Sync.Schedule != "" {
		scheduler := service.NewSyncScheduler(userRepo, syncService, cfg.Sync.RequestTimeout, appLogger)
		if err := scheduler.Start(cfg.Sync.Schedule); err != nil {
			appLogger.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	plaidHandler := handlers.NewPlaidHandler(plaidService, syncService, appLogger)
	transactionHandler := handlers.NewTransactionHandler(transactionService, appLogger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, appLogger)
	userHandler := handlers.NewUserHandler(userService, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Sync, authHandler, plaidHandler, transactionHandler, categoryHandler, userHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
