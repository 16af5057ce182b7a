package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryKind string

const (
	KindNormal        CategoryKind = "normal"
	KindUncategorized CategoryKind = "uncategorized"
	KindIncome        CategoryKind = "income"
)

type Category struct {
	ID        uuid.UUID    `db:"id"`
	UserID    uuid.UUID    `db:"user_id"`
	Name      string       `db:"name"`
	Color     string       `db:"color"`
	IsHidden  bool         `db:"is_hidden"`
	Kind      CategoryKind `db:"kind"`
	CreatedAt time.Time    `db:"created_at"`
}
