package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id"`
	Username         string    `db:"username"`
	Email            string    `db:"email"`
	Password         string    `db:"password"`
	PlaidAccessToken *string   `db:"plaid_access_token"`
	PlaidItemID      *string   `db:"plaid_item_id"`
	SyncCursor       *string   `db:"sync_cursor"`
	IsBankConnected  bool      `db:"is_bank_connected"`
	DisplayCurrency  string    `db:"display_currency"`
	WalkthroughDone  bool      `db:"walkthrough_done"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
