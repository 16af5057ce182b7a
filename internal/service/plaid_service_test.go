package service

import (
	"context"
	"errors"
	"testing"

	"swipespend/internal/models"
	"swipespend/internal/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLink scripts the provider's link endpoints with function fields.
type fakeLink struct {
	createLinkTokenFn     func(ctx context.Context, userID string, requestedDays int, platform string) (string, error)
	exchangePublicTokenFn func(ctx context.Context, publicToken string) (string, string, error)
	removeItemFn          func(ctx context.Context, accessToken string) error
	removedTokens         []string
}

func (f *fakeLink) CreateLinkToken(ctx context.Context, userID string, requestedDays int, platform string) (string, error) {
	if f.createLinkTokenFn != nil {
		return f.createLinkTokenFn(ctx, userID, requestedDays, platform)
	}
	return "link-token", nil
}

func (f *fakeLink) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	if f.exchangePublicTokenFn != nil {
		return f.exchangePublicTokenFn(ctx, publicToken)
	}
	return "access-token", "item-1", nil
}

func (f *fakeLink) RemoveItem(ctx context.Context, accessToken string) error {
	f.removedTokens = append(f.removedTokens, accessToken)
	if f.removeItemFn != nil {
		return f.removeItemFn(ctx, accessToken)
	}
	return nil
}

type plaidFixture struct {
	stores *memStores
	link   *fakeLink
	feed   *scriptedFeed
	svc    *PlaidService
	userID uuid.UUID
}

func newPlaidFixture(t *testing.T) *plaidFixture {
	t.Helper()
	stores := newMemStores()
	link := &fakeLink{}
	feed := &scriptedFeed{}

	logger := zap.NewNop()
	categoryService := NewCategoryService(stores.categoryStore(), logger)
	syncService := NewSyncService(stores.userStore(), stores.categoryStore(), stores.transactionStore(), feed, logger)
	svc := NewPlaidService(stores.userStore(), link, categoryService, syncService, logger)

	userID := uuid.New()
	stores.addUser(&models.User{ID: userID, Email: "link@example.com"})

	return &plaidFixture{stores: stores, link: link, feed: feed, svc: svc, userID: userID}
}

func TestCreateLinkTokenUnknownUser(t *testing.T) {
	f := newPlaidFixture(t)

	_, err := f.svc.CreateLinkToken(context.Background(), uuid.New(), 30, "ios")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExchangePublicTokenLinksAndBootstraps(t *testing.T) {
	f := newPlaidFixture(t)
	f.feed.pages = []*provider.ChangeSet{{
		Added:      []provider.RawTransaction{rawExpense("txn-1", "10.00", "2026-08-01")},
		NextCursor: "cursor-1",
	}}

	require.NoError(t, f.svc.ExchangePublicToken(context.Background(), f.userID, "public-token"))

	user, err := f.stores.userStore().GetByID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.True(t, user.IsBankConnected)
	require.NotNil(t, user.PlaidAccessToken)
	assert.Equal(t, "access-token", *user.PlaidAccessToken)
	require.NotNil(t, user.PlaidItemID)
	assert.Equal(t, "item-1", *user.PlaidItemID)

	// Defaults were bootstrapped before the initial sync ran.
	count, err := f.stores.categoryStore().CountByUser(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories), count)
	assert.NotNil(t, f.stores.transaction("txn-1"))
}

func TestExchangePublicTokenInitialSyncFailureIsNotFatal(t *testing.T) {
	f := newPlaidFixture(t)
	f.feed.errs = []error{errors.New("provider down")}

	// Linking succeeds even though the kicked-off sync failed.
	require.NoError(t, f.svc.ExchangePublicToken(context.Background(), f.userID, "public-token"))

	user, err := f.stores.userStore().GetByID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.True(t, user.IsBankConnected)
}

func TestExchangePublicTokenProviderError(t *testing.T) {
	f := newPlaidFixture(t)
	f.link.exchangePublicTokenFn = func(context.Context, string) (string, string, error) {
		return "", "", errors.New("invalid public token")
	}

	err := f.svc.ExchangePublicToken(context.Background(), f.userID, "bad-token")
	require.Error(t, err)

	user, uerr := f.stores.userStore().GetByID(context.Background(), f.userID)
	require.NoError(t, uerr)
	assert.False(t, user.IsBankConnected)
}

func TestRemoveItem(t *testing.T) {
	f := newPlaidFixture(t)
	require.NoError(t, f.svc.ExchangePublicToken(context.Background(), f.userID, "public-token"))

	require.NoError(t, f.svc.RemoveItem(context.Background(), f.userID))

	assert.Equal(t, []string{"access-token"}, f.link.removedTokens)
	user, err := f.stores.userStore().GetByID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.False(t, user.IsBankConnected)
	assert.Nil(t, user.PlaidAccessToken)
	assert.Nil(t, user.PlaidItemID)
	assert.Nil(t, user.SyncCursor)

	// Unlinking again has nothing to revoke.
	assert.ErrorIs(t, f.svc.RemoveItem(context.Background(), f.userID), ErrNotLinked)
}

func TestIsBankConnected(t *testing.T) {
	f := newPlaidFixture(t)

	connected, err := f.svc.IsBankConnected(context.Background(), f.userID)
	require.NoError(t, err)
	assert.False(t, connected)

	require.NoError(t, f.svc.ExchangePublicToken(context.Background(), f.userID, "public-token"))

	connected, err = f.svc.IsBankConnected(context.Background(), f.userID)
	require.NoError(t, err)
	assert.True(t, connected)
}
