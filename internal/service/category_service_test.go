package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"swipespend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryFixture(t *testing.T) (*memStores, *CategoryService, uuid.UUID) {
	t.Helper()
	stores := newMemStores()
	svc := NewCategoryService(stores.categoryStore(), zap.NewNop())
	userID := uuid.New()
	require.NoError(t, svc.EnsureDefaults(context.Background(), userID))
	return stores, svc, userID
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	stores, svc, userID := newCategoryFixture(t)

	require.NoError(t, svc.EnsureDefaults(context.Background(), userID))
	require.NoError(t, svc.EnsureDefaults(context.Background(), userID))

	count, err := stores.categoryStore().CountByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories), count)
}

func TestEnsureDefaultsCreatesSystemBuckets(t *testing.T) {
	stores, _, userID := newCategoryFixture(t)

	uncategorized, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindUncategorized)
	require.NoError(t, err)
	assert.True(t, uncategorized.IsHidden)
	assert.Equal(t, "Uncategorized", uncategorized.Name)

	income, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindIncome)
	require.NoError(t, err)
	assert.False(t, income.IsHidden)
	assert.Equal(t, "Income", income.Name)
}

func TestListManageableExcludesSystemCategories(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	manageable, err := svc.ListManageable(context.Background(), userID)
	require.NoError(t, err)
	// 8 defaults minus Income and Uncategorized.
	assert.Len(t, manageable, len(DefaultCategories)-2)
	for _, cat := range manageable {
		assert.Equal(t, models.KindNormal, cat.Kind)
	}
}

func TestListSwipeableIncludesIncomeButNotHidden(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	swipeable, err := svc.ListSwipeable(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, swipeable, len(DefaultCategories)-1)

	names := make([]string, 0, len(swipeable))
	for _, cat := range swipeable {
		names = append(names, cat.Name)
	}
	assert.Contains(t, names, "Income")
	assert.NotContains(t, names, "Uncategorized")
}

func TestCreateCategoryValidation(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), userID, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidCategoryName)

	_, err = svc.Create(context.Background(), userID, strings.Repeat("x", 51), "")
	assert.ErrorIs(t, err, ErrInvalidCategoryName)

	cat, err := svc.Create(context.Background(), userID, "  Groceries  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", cat.Name)
	assert.NotEmpty(t, cat.Color)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), userID, "Travel", "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userID, "Travel", "")
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestCreateCategoryLimitBoundary(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	// Defaults leave 7 visible categories, so 13 more reach the cap exactly.
	for i := 0; i < MaxCategories-7; i++ {
		_, err := svc.Create(context.Background(), userID, fmt.Sprintf("Category %d", i), "")
		require.NoError(t, err, "creating category %d must stay under the cap", i)
	}

	_, err := svc.Create(context.Background(), userID, "One Too Many", "")
	assert.ErrorIs(t, err, ErrCategoryLimit)

	// The hidden Uncategorized bucket does not count against the cap, and
	// deleting a category frees a slot.
	manageable, err := svc.ListManageable(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), userID, manageable[0].ID))

	_, err = svc.Create(context.Background(), userID, "One Too Many", "")
	assert.NoError(t, err)
}

func TestCreateCategoryPicksPaletteColor(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	// 7 visible categories exist, so the next auto color is palette index 7.
	cat, err := svc.Create(context.Background(), userID, "Pets", "")
	require.NoError(t, err)
	assert.Equal(t, CategoryColors[7], cat.Color)

	custom, err := svc.Create(context.Background(), userID, "Garden", "#123456")
	require.NoError(t, err)
	assert.Equal(t, "#123456", custom.Color)
}

func TestUpdateCategory(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	cat, err := svc.Create(context.Background(), userID, "Travel", "#111111")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), userID, cat.ID, "Trips", "")
	require.NoError(t, err)
	assert.Equal(t, "Trips", updated.Name)
	assert.Equal(t, "#111111", updated.Color, "omitted color keeps the existing one")

	// Renaming to itself is not a conflict.
	_, err = svc.Update(context.Background(), userID, cat.ID, "Trips", "#222222")
	assert.NoError(t, err)

	_, err = svc.Update(context.Background(), userID, cat.ID, "Shopping", "")
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestUpdateSystemCategoryRejected(t *testing.T) {
	stores, svc, userID := newCategoryFixture(t)

	income, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindIncome)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), userID, income.ID, "Salary", "")
	assert.ErrorIs(t, err, ErrSystemCategory)

	uncategorized, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindUncategorized)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), userID, uncategorized.ID, "Inbox", "")
	assert.ErrorIs(t, err, ErrSystemCategory)
}

func TestDeleteSystemCategoryRejected(t *testing.T) {
	stores, svc, userID := newCategoryFixture(t)

	income, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindIncome)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, income.ID), ErrSystemCategory)

	uncategorized, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindUncategorized)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, uncategorized.ID), ErrSystemCategory)
}

func TestDeleteReassignsTransactions(t *testing.T) {
	stores, svc, userID := newCategoryFixture(t)

	cat, err := svc.Create(context.Background(), userID, "Travel", "")
	require.NoError(t, err)

	catID := cat.ID
	stores.addTransaction(&models.Transaction{
		ID:         "txn-1",
		UserID:     userID,
		Type:       models.TypeExpense,
		Date:       time.Now(),
		CategoryID: &catID,
	})

	require.NoError(t, svc.Delete(context.Background(), userID, cat.ID))

	uncategorized, err := stores.categoryStore().GetByKind(context.Background(), userID, models.KindUncategorized)
	require.NoError(t, err)
	tx := stores.transaction("txn-1")
	require.NotNil(t, tx)
	assert.Equal(t, uncategorized.ID, *tx.CategoryID)
}

func TestCategoryTenantIsolation(t *testing.T) {
	_, svc, userID := newCategoryFixture(t)

	otherUser := uuid.New()
	require.NoError(t, svc.EnsureDefaults(context.Background(), otherUser))
	theirs, err := svc.Create(context.Background(), otherUser, "Theirs", "")
	require.NoError(t, err)

	// Same name across tenants is fine.
	_, err = svc.Create(context.Background(), userID, "Theirs", "")
	assert.NoError(t, err)

	// Another tenant's category is invisible, not forbidden.
	_, err = svc.Update(context.Background(), userID, theirs.ID, "Mine Now", "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, theirs.ID), ErrCategoryNotFound)
}
