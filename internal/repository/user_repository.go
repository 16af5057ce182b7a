package repository

import (
	"context"
	"errors"

	"swipespend/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = "id, username, email, password, plaid_access_token, plaid_item_id, sync_cursor, is_bank_connected, display_currency, walkthrough_done, created_at, updated_at"

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := squirrel.Insert("users").
		Columns("id", "username", "email", "password", "is_bank_connected", "display_currency", "walkthrough_done", "created_at", "updated_at").
		Values(user.ID, user.Username, user.Email, user.Password, user.IsBankConnected, user.DisplayCurrency, user.WalkthroughDone, user.CreatedAt, user.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) GetByPlaidItemID(ctx context.Context, itemID string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"plaid_item_id": itemID})
}

func (r *UserRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.User, error) {
	query := squirrel.Select(userColumns).
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password,
		&user.PlaidAccessToken, &user.PlaidItemID, &user.SyncCursor,
		&user.IsBankConnected, &user.DisplayCurrency, &user.WalkthroughDone,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateCursor persists the sync position for the next reconciliation pass.
// Callers must only invoke it after the page's mutations are applied.
func (r *UserRepository) UpdateCursor(ctx context.Context, userID uuid.UUID, cursor string) error {
	return r.update(ctx, userID, squirrel.Update("users").Set("sync_cursor", cursor))
}

// SetPlaidLink stores the exchanged credential and flips the linked flag.
func (r *UserRepository) SetPlaidLink(ctx context.Context, userID uuid.UUID, accessToken, itemID string) error {
	return r.update(ctx, userID, squirrel.Update("users").
		Set("plaid_access_token", accessToken).
		Set("plaid_item_id", itemID).
		Set("is_bank_connected", true))
}

// ClearPlaidLink removes the credential, item id and cursor. The ledger and
// categories are intentionally left in place.
func (r *UserRepository) ClearPlaidLink(ctx context.Context, userID uuid.UUID) error {
	return r.update(ctx, userID, squirrel.Update("users").
		Set("plaid_access_token", nil).
		Set("plaid_item_id", nil).
		Set("sync_cursor", nil).
		Set("is_bank_connected", false))
}

func (r *UserRepository) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) error {
	return r.update(ctx, userID, squirrel.Update("users").Set("display_currency", currency))
}

func (r *UserRepository) MarkWalkthroughDone(ctx context.Context, userID uuid.UUID) error {
	return r.update(ctx, userID, squirrel.Update("users").Set("walkthrough_done", true))
}

func (r *UserRepository) update(ctx context.Context, userID uuid.UUID, builder squirrel.UpdateBuilder) error {
	query := builder.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBankConnected returns every user with a linked provider item, for the
// background sync scheduler.
func (r *UserRepository) ListBankConnected(ctx context.Context) ([]*models.User, error) {
	query := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"is_bank_connected": true}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.Password,
			&user.PlaidAccessToken, &user.PlaidItemID, &user.SyncCursor,
			&user.IsBankConnected, &user.DisplayCurrency, &user.WalkthroughDone,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
