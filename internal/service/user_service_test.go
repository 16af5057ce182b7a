package service

import (
	"context"
	"testing"

	"swipespend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture(t *testing.T) (*memStores, *UserService, uuid.UUID) {
	t.Helper()
	stores := newMemStores()
	svc := NewUserService(stores.userStore(), zap.NewNop())
	userID := uuid.New()
	stores.addUser(&models.User{ID: userID, Email: "demo@example.com", DisplayCurrency: "USD"})
	return stores, svc, userID
}

func TestGetProgress(t *testing.T) {
	_, svc, userID := newUserFixture(t)

	user, err := svc.GetProgress(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "USD", user.DisplayCurrency)
	assert.False(t, user.WalkthroughDone)

	_, err = svc.GetProgress(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateCurrency(t *testing.T) {
	_, svc, userID := newUserFixture(t)

	assert.Error(t, svc.UpdateCurrency(context.Background(), userID, "DOLLARS"))
	assert.Error(t, svc.UpdateCurrency(context.Background(), userID, ""))

	require.NoError(t, svc.UpdateCurrency(context.Background(), userID, "EUR"))
	user, err := svc.GetProgress(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", user.DisplayCurrency)

	assert.ErrorIs(t, svc.UpdateCurrency(context.Background(), uuid.New(), "EUR"), ErrUserNotFound)
}

func TestCompleteWalkthrough(t *testing.T) {
	_, svc, userID := newUserFixture(t)

	require.NoError(t, svc.CompleteWalkthrough(context.Background(), userID))
	user, err := svc.GetProgress(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, user.WalkthroughDone)

	assert.ErrorIs(t, svc.CompleteWalkthrough(context.Background(), uuid.New()), ErrUserNotFound)
}
