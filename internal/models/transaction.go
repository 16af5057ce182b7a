package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction is one ledger row. ID is the provider's transaction id and is
// used as the primary key, which makes every merge keyed and idempotent.
type Transaction struct {
	ID          string          `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Date        time.Time       `db:"date"`
	Merchant    string          `db:"merchant"`
	Currency    string          `db:"currency"`
	Type        TransactionType `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	IsPending   bool            `db:"is_pending"`
	Description string          `db:"description"`
	CategoryID  *uuid.UUID      `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
