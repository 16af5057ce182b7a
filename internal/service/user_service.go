package service

import (
	"context"
	"errors"

	"swipespend/internal/models"
	"swipespend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService covers user progress state: display currency and the
// first-run walkthrough flag.
type UserService struct {
	userStore UserStore
	logger    *zap.Logger
}

func NewUserService(userStore UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		userStore: userStore,
		logger:    logger,
	}
}

func (s *UserService) GetProgress(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) error {
	if len(currency) != 3 {
		return errors.New("currency must be a three-letter ISO code")
	}
	if err := s.userStore.UpdateCurrency(ctx, userID, currency); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) CompleteWalkthrough(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.MarkWalkthroughDone(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
