package repository

import (
	"context"
	"errors"

	"swipespend/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const categoryColumns = "id, user_id, name, color, is_hidden, kind, created_at"

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) CreateBatch(ctx context.Context, categories []*models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	builder := squirrel.Insert("categories").
		Columns("id", "user_id", "name", "color", "is_hidden", "kind", "created_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, cat := range categories {
		builder = builder.Values(cat.ID, cat.UserID, cat.Name, cat.Color, cat.IsHidden, cat.Kind, cat.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CategoryRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, squirrel.Eq{"user_id": userID})
}

func (r *CategoryRepository) CountVisible(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, squirrel.Eq{"user_id": userID, "is_hidden": false})
}

func (r *CategoryRepository) count(ctx context.Context, pred squirrel.Eq) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("categories").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id, "user_id": userID})
}

// GetByKind resolves a system category structurally, without matching on the
// name string. There is at most one non-normal category per kind per user.
func (r *CategoryRepository) GetByKind(ctx context.Context, userID uuid.UUID, kind models.CategoryKind) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID, "kind": kind})
}

func (r *CategoryRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.Category, error) {
	query := squirrel.Select(categoryColumns).
		From("categories").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cat models.Category
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsHidden, &cat.Kind, &cat.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cat, nil
}

// ListManageable returns the user's visible normal categories, oldest first.
// System categories (Uncategorized, Income) never appear here.
func (r *CategoryRepository) ListManageable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns).
		From("categories").
		Where(squirrel.Eq{"user_id": userID, "is_hidden": false, "kind": models.KindNormal}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// ListSwipeable returns every visible category ordered by name, for the
// swipe-to-categorize screen. Income is visible; only Uncategorized is hidden.
func (r *CategoryRepository) ListSwipeable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns).
		From("categories").
		Where(squirrel.Eq{"user_id": userID, "is_hidden": false}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

func (r *CategoryRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Category, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(
			&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsHidden, &cat.Kind, &cat.CreatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, &cat)
	}

	return categories, rows.Err()
}

// CreateChecked inserts a visible category with the limit and uniqueness
// checks in the same transaction as the insert. A per-user advisory lock
// serializes concurrent creates so two requests cannot both pass the count
// check; the partial unique index backstops the name check.
func (r *CategoryRepository) CreateChecked(ctx context.Context, cat *models.Category, maxVisible int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockUserCategories(ctx, tx, cat.UserID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM categories WHERE user_id = $1 AND is_hidden = false",
			cat.UserID,
		).Scan(&count); err != nil {
			return err
		}
		if count >= maxVisible {
			return ErrLimitReached
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND name = $2 AND is_hidden = false)",
			cat.UserID, cat.Name,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrDuplicateName
		}

		query := squirrel.Insert("categories").
			Columns("id", "user_id", "name", "color", "is_hidden", "kind", "created_at").
			Values(cat.ID, cat.UserID, cat.Name, cat.Color, cat.IsHidden, cat.Kind, cat.CreatedAt).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		return mapUniqueViolation(err)
	})
}

// UpdateChecked renames/recolors a visible category, re-checking name
// uniqueness against every other row of the user inside one transaction.
func (r *CategoryRepository) UpdateChecked(ctx context.Context, userID, id uuid.UUID, name, color string) (*models.Category, error) {
	var updated models.Category

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockUserCategories(ctx, tx, userID); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND name = $2 AND id <> $3)",
			userID, name, id,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrDuplicateName
		}

		query := squirrel.Update("categories").
			Set("name", name).
			Set("color", color).
			Where(squirrel.Eq{"id": id, "user_id": userID, "is_hidden": false}).
			Suffix("RETURNING " + categoryColumns).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(
			&updated.ID, &updated.UserID, &updated.Name, &updated.Color,
			&updated.IsHidden, &updated.Kind, &updated.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapUniqueViolation(err)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteAndReassign moves every transaction referencing the category to the
// user's Uncategorized category, then deletes the row. Both steps commit
// together so no transaction is ever left pointing at a missing category.
func (r *CategoryRepository) DeleteAndReassign(ctx context.Context, userID, categoryID, uncategorizedID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"UPDATE transactions SET category_id = $1, updated_at = NOW() WHERE category_id = $2 AND user_id = $3",
			uncategorizedID, categoryID, userID,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			"DELETE FROM categories WHERE id = $1 AND user_id = $2 AND is_hidden = false",
			categoryID, userID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// lockUserCategories takes a transaction-scoped advisory lock keyed by the
// user id, serializing category writes for that user.
func lockUserCategories(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", userID)
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateName
	}
	return err
}
