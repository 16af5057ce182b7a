package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"swipespend/internal/models"
	"swipespend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	categoryStore CategoryStore
	logger        *zap.Logger
}

func NewCategoryService(categoryStore CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryStore: categoryStore,
		logger:        logger,
	}
}

// EnsureDefaults creates the starter category set for the user. A user that
// already has any category is left untouched, so repeated link attempts are
// no-ops. Must complete before the first reconciliation pass.
func (s *CategoryService) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	count, err := s.categoryStore.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug("User already has categories, skipping defaults",
			zap.String("user_id", userID.String()))
		return nil
	}

	now := time.Now()
	categories := make([]*models.Category, 0, len(DefaultCategories))
	for _, def := range DefaultCategories {
		categories = append(categories, &models.Category{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      def.Name,
			Color:     def.Color,
			IsHidden:  def.Hidden,
			Kind:      def.Kind,
			CreatedAt: now,
		})
	}

	if err := s.categoryStore.CreateBatch(ctx, categories); err != nil {
		return err
	}

	s.logger.Info("Created default categories",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(categories)))
	return nil
}

// ListManageable returns the categories the user can rename or delete, oldest
// first. Uncategorized and Income never appear.
func (s *CategoryService) ListManageable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	return s.categoryStore.ListManageable(ctx, userID)
}

// ListSwipeable returns the categories offered on the swipe screen, by name.
func (s *CategoryService) ListSwipeable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	return s.categoryStore.ListSwipeable(ctx, userID)
}

// Create adds a visible category. The name is trimmed and must be 1-50
// characters and unique among the user's visible categories; the visible
// count must stay under MaxCategories. When no color is given, one is picked
// from the palette by round-robin over the existing visible count.
func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, name, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, ErrInvalidCategoryName
	}

	if color == "" {
		count, err := s.categoryStore.CountVisible(ctx, userID)
		if err != nil {
			return nil, err
		}
		color = CategoryColors[count%len(CategoryColors)]
	}

	cat := &models.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		Kind:      models.KindNormal,
		CreatedAt: time.Now(),
	}

	if err := s.categoryStore.CreateChecked(ctx, cat, MaxCategories); err != nil {
		switch {
		case errors.Is(err, repository.ErrLimitReached):
			return nil, ErrCategoryLimit
		case errors.Is(err, repository.ErrDuplicateName):
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("user_id", userID.String()),
		zap.String("category", cat.Name))
	return cat, nil
}

// Update renames and optionally recolors a category. System categories are
// rejected; uniqueness is re-checked excluding the row being edited.
func (s *CategoryService) Update(ctx context.Context, userID, id uuid.UUID, name, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, ErrInvalidCategoryName
	}

	existing, err := s.categoryStore.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if existing.Kind != models.KindNormal {
		return nil, ErrSystemCategory
	}
	if color == "" {
		color = existing.Color
	}

	updated, err := s.categoryStore.UpdateChecked(ctx, userID, id, name, color)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateName):
			return nil, ErrCategoryExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	s.logger.Info("Category updated",
		zap.String("user_id", userID.String()),
		zap.String("category", updated.Name))
	return updated, nil
}

// Delete removes a category after reassigning every transaction pointing at
// it to the user's Uncategorized bucket. System categories are rejected.
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	existing, err := s.categoryStore.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if existing.Kind != models.KindNormal {
		return ErrSystemCategory
	}

	uncategorized, err := s.categoryStore.GetByKind(ctx, userID, models.KindUncategorized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotBootstrapped
		}
		return err
	}

	if err := s.categoryStore.DeleteAndReassign(ctx, userID, id, uncategorized.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.logger.Info("Category deleted, transactions moved to uncategorized",
		zap.String("user_id", userID.String()),
		zap.String("category", existing.Name))
	return nil
}
