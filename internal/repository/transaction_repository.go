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

const transactionColumns = "id, user_id, date, merchant, currency, type, amount, is_pending, description, category_id, created_at, updated_at"

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// InsertIgnoreDuplicates bulk-inserts transactions keyed by the provider id.
// Rows whose id already exists are skipped, not errors, so replaying the same
// changefeed page is a no-op.
func (r *TransactionRepository) InsertIgnoreDuplicates(ctx context.Context, transactions []*models.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	builder := squirrel.Insert("transactions").
		Columns("id", "user_id", "date", "merchant", "currency", "type", "amount", "is_pending", "description", "category_id", "created_at", "updated_at").
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(tx.ID, tx.UserID, tx.Date, tx.Merchant, tx.Currency, tx.Type, tx.Amount, tx.IsPending, tx.Description, tx.CategoryID, tx.CreatedAt, tx.UpdatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpsertPreservingCategory updates every provider-derived field of an
// existing row but never its category_id, so a provider-side edit cannot
// overwrite the user's categorization. A missing row is created as given
// (out-of-order delivery).
func (r *TransactionRepository) UpsertPreservingCategory(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns("id", "user_id", "date", "merchant", "currency", "type", "amount", "is_pending", "description", "category_id", "created_at", "updated_at").
		Values(tx.ID, tx.UserID, tx.Date, tx.Merchant, tx.Currency, tx.Type, tx.Amount, tx.IsPending, tx.Description, tx.CategoryID, tx.CreatedAt, tx.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			merchant = EXCLUDED.merchant,
			currency = EXCLUDED.currency,
			type = EXCLUDED.type,
			amount = EXCLUDED.amount,
			is_pending = EXCLUDED.is_pending,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeleteByIDs removes transactions by provider id, scoped to the user even
// though ids are provider-global. Missing ids are not errors.
func (r *TransactionRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": ids, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID uuid.UUID, id string) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.UserID, &tx.Date, &tx.Merchant, &tx.Currency, &tx.Type,
		&tx.Amount, &tx.IsPending, &tx.Description, &tx.CategoryID,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// SetCategory points a transaction at a category and returns the updated row.
func (r *TransactionRepository) SetCategory(ctx context.Context, userID uuid.UUID, id string, categoryID uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Update("transactions").
		Set("category_id", categoryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + transactionColumns).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.UserID, &tx.Date, &tx.Merchant, &tx.Currency, &tx.Type,
		&tx.Amount, &tx.IsPending, &tx.Description, &tx.CategoryID,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// List returns a page of the user's ledger, most recent first, plus the total
// row count for pagination.
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, int, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	transactions, err := r.list(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countSQL, countArgs, err := squirrel.Select("COUNT(*)").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// ListAll returns the user's full ledger, most recent first.
func (r *TransactionRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// ListUncategorized returns the user's expense transactions still sitting in
// the Uncategorized bucket, most recent first (the swipe queue).
func (r *TransactionRepository) ListUncategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select("t." + transactionColumnsAliased).
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(squirrel.Eq{
			"t.user_id": userID,
			"t.type":    models.TypeExpense,
			"c.kind":    models.KindUncategorized,
		}).
		OrderBy("t.date DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// ListCategorized returns the user's expense transactions assigned to a
// normal category, excluding the Uncategorized and Income buckets.
func (r *TransactionRepository) ListCategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select("t." + transactionColumnsAliased).
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(squirrel.Eq{
			"t.user_id": userID,
			"t.type":    models.TypeExpense,
			"c.kind":    models.KindNormal,
		}).
		OrderBy("t.date DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

const transactionColumnsAliased = "id, t.user_id, t.date, t.merchant, t.currency, t.type, t.amount, t.is_pending, t.description, t.category_id, t.created_at, t.updated_at"

func (r *TransactionRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Date, &tx.Merchant, &tx.Currency, &tx.Type,
			&tx.Amount, &tx.IsPending, &tx.Description, &tx.CategoryID,
			&tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
