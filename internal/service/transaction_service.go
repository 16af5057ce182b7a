package service

import (
	"context"
	"errors"

	"swipespend/internal/models"
	"swipespend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService struct {
	transactionStore TransactionStore
	categoryStore    CategoryStore
	logger           *zap.Logger
}

func NewTransactionService(transactionStore TransactionStore, categoryStore CategoryStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		transactionStore: transactionStore,
		categoryStore:    categoryStore,
		logger:           logger,
	}
}

// Categorize assigns a category to a transaction. Both must belong to the
// user; cross-tenant ids resolve to not-found, never to another user's data.
func (s *TransactionService) Categorize(ctx context.Context, userID uuid.UUID, transactionID string, categoryID uuid.UUID) (*models.Transaction, error) {
	if _, err := s.transactionStore.GetByID(ctx, userID, transactionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	category, err := s.categoryStore.GetByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	updated, err := s.transactionStore.SetCategory(ctx, userID, transactionID, category.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	s.logger.Info("Transaction categorized",
		zap.String("transaction_id", transactionID),
		zap.String("category", category.Name))
	return updated, nil
}

// Uncategorize moves a transaction back to the user's Uncategorized bucket.
// This is also what the swipe screen's undo calls, so undo always resets to
// Uncategorized rather than restoring the previous category.
func (s *TransactionService) Uncategorize(ctx context.Context, userID uuid.UUID, transactionID string) (*models.Transaction, error) {
	uncategorized, err := s.categoryStore.GetByKind(ctx, userID, models.KindUncategorized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotBootstrapped
		}
		return nil, err
	}

	updated, err := s.transactionStore.SetCategory(ctx, userID, transactionID, uncategorized.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	s.logger.Info("Transaction moved back to uncategorized",
		zap.String("transaction_id", transactionID))
	return updated, nil
}

// List returns one page of the user's ledger with the total count.
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.transactionStore.List(ctx, userID, limit, offset)
}

// ListAll returns the user's full ledger, for export.
func (s *TransactionService) ListAll(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.transactionStore.ListAll(ctx, userID)
}

// ListUncategorized returns the swipe queue: expense transactions still in
// the Uncategorized bucket.
func (s *TransactionService) ListUncategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.transactionStore.ListUncategorized(ctx, userID)
}

// ListCategorized returns expense transactions in normal categories,
// excluding the Uncategorized and Income buckets.
func (s *TransactionService) ListCategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.transactionStore.ListCategorized(ctx, userID)
}
