package main

import (
	"context"
	"log"
	"time"

	"swipespend/internal/models"
	"swipespend/internal/repository"
	"swipespend/internal/service"
	"swipespend/pkg/auth"
	"swipespend/pkg/config"
	"swipespend/pkg/logger"
	"swipespend/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Schema DDL. The partial unique indexes back the application-level checks:
// visible names are unique per user and each user has at most one category of
// each system kind.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	plaid_access_token TEXT,
	plaid_item_id TEXT,
	sync_cursor TEXT,
	is_bank_connected BOOLEAN NOT NULL DEFAULT FALSE,
	display_currency CHAR(3) NOT NULL DEFAULT 'USD',
	walkthrough_done BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name VARCHAR(50) NOT NULL,
	color VARCHAR(7) NOT NULL,
	is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
	kind TEXT NOT NULL DEFAULT 'normal' CHECK (kind IN ('normal', 'uncategorized', 'income')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_visible_name
	ON categories (user_id, name) WHERE NOT is_hidden;
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_system_kind
	ON categories (user_id, kind) WHERE kind <> 'normal';

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	merchant TEXT NOT NULL,
	currency CHAR(3) NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
	is_pending BOOLEAN NOT NULL DEFAULT FALSE,
	description TEXT NOT NULL DEFAULT '',
	category_id UUID REFERENCES categories(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date
	ON transactions (user_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_category
	ON transactions (category_id);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying schema...")
	if _, err := db.Exec(ctx, schema); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	transactionRepo := repository.NewTransactionRepository(db, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)

	if err := seedDemoUser(ctx, userRepo, categoryRepo, transactionRepo, categoryService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed demo data", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

// seedDemoUser creates a demo account with the default categories and a
// handful of transactions, so the API is explorable without a Plaid link.
func seedDemoUser(
	ctx context.Context,
	userRepo *repository.UserRepository,
	categoryRepo *repository.CategoryRepository,
	transactionRepo *repository.TransactionRepository,
	categoryService *service.CategoryService,
	appLogger *zap.Logger,
) error {
	const demoEmail = "demo@swipespend.dev"

	if existing, err := userRepo.GetByEmail(ctx, demoEmail); err == nil {
		appLogger.Info("Demo user already exists, skipping",
			zap.String("user_id", existing.ID.String()))
		return nil
	}

	hashed, err := auth.HashPassword("demo-password")
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		ID:              uuid.New(),
		Username:        "demo",
		Email:           demoEmail,
		Password:        hashed,
		DisplayCurrency: "USD",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}

	if err := categoryService.EnsureDefaults(ctx, user.ID); err != nil {
		return err
	}

	uncategorized, err := categoryRepo.GetByKind(ctx, user.ID, models.KindUncategorized)
	if err != nil {
		return err
	}
	income, err := categoryRepo.GetByKind(ctx, user.ID, models.KindIncome)
	if err != nil {
		return err
	}

	samples := []*models.Transaction{
		{
			ID:          "demo-tx-coffee",
			Merchant:    "Blue Bottle Coffee",
			Type:        models.TypeExpense,
			Amount:      decimal.NewFromFloat(6.25),
			CategoryID:  &uncategorized.ID,
			Description: "BLUE BOTTLE COFFEE SF",
		},
		{
			ID:          "demo-tx-groceries",
			Merchant:    "Whole Foods Market",
			Type:        models.TypeExpense,
			Amount:      decimal.NewFromFloat(84.17),
			CategoryID:  &uncategorized.ID,
			Description: "WHOLEFDS MKT 10259",
		},
		{
			ID:          "demo-tx-salary",
			Merchant:    "Acme Corp Payroll",
			Type:        models.TypeIncome,
			Amount:      decimal.NewFromFloat(2400.00),
			CategoryID:  &income.ID,
			Description: "ACME CORP DIRECT DEP",
		},
	}
	for i, tx := range samples {
		tx.UserID = user.ID
		tx.Date = now.AddDate(0, 0, -i)
		tx.Currency = "USD"
		tx.CreatedAt = now
		tx.UpdatedAt = now
	}

	if _, err := transactionRepo.InsertIgnoreDuplicates(ctx, samples); err != nil {
		return err
	}

	appLogger.Info("Seeded demo user",
		zap.String("user_id", user.ID.String()),
		zap.String("email", demoEmail))
	return nil
}
