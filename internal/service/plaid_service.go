package service

import (
	"context"
	"errors"

	"swipespend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaidService owns the bank link lifecycle: link token creation, public
// token exchange and unlinking.
type PlaidService struct {
	userStore       UserStore
	link            LinkProvider
	categoryService *CategoryService
	syncService     *SyncService
	logger          *zap.Logger
}

func NewPlaidService(userStore UserStore, link LinkProvider, categoryService *CategoryService, syncService *SyncService, logger *zap.Logger) *PlaidService {
	return &PlaidService{
		userStore:       userStore,
		link:            link,
		categoryService: categoryService,
		syncService:     syncService,
		logger:          logger,
	}
}

// CreateLinkToken starts the provider's link flow for the user.
func (s *PlaidService) CreateLinkToken(ctx context.Context, userID uuid.UUID, requestedDays int, platform string) (string, error) {
	if _, err := s.userStore.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.link.CreateLinkToken(ctx, userID.String(), requestedDays, platform)
}

// ExchangePublicToken completes the link flow: stores the credential, marks
// the user linked, bootstraps the default categories and kicks off the
// initial sync. Defaults must exist before the sync runs, since added records
// are assigned to them. The initial sync is best effort: its failure does not
// fail the link, the user can sync manually later.
func (s *PlaidService) ExchangePublicToken(ctx context.Context, userID uuid.UUID, publicToken string) error {
	accessToken, itemID, err := s.link.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return err
	}

	if err := s.userStore.SetPlaidLink(ctx, userID, accessToken, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.categoryService.EnsureDefaults(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Bank account linked", zap.String("user_id", userID.String()))

	if _, err := s.syncService.Sync(ctx, userID); err != nil {
		s.logger.Warn("Initial sync after linking failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	return nil
}

// RemoveItem unlinks the bank: the provider item is revoked and the stored
// credential, item id and cursor are cleared. The ledger and categories stay.
func (s *PlaidService) RemoveItem(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.PlaidAccessToken == nil || *user.PlaidAccessToken == "" {
		return ErrNotLinked
	}

	if err := s.link.RemoveItem(ctx, *user.PlaidAccessToken); err != nil {
		return err
	}

	if err := s.userStore.ClearPlaidLink(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Bank account unlinked", zap.String("user_id", userID.String()))
	return nil
}

// IsBankConnected reports whether the user has a linked provider item.
func (s *PlaidService) IsBankConnected(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.IsBankConnected, nil
}
