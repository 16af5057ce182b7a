package service

import (
	"context"
	"testing"
	"time"

	"swipespend/internal/dto"
	"swipespend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthFixture(t *testing.T) (*memStores, *AuthService) {
	t.Helper()
	stores := newMemStores()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return stores, NewAuthService(stores.userStore(), jwtManager, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "demo",
		Email:    "demo@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "demo@example.com", resp.User.Email)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "demo@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "demo", Email: "demo@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "demo2", Email: "demo@example.com", Password: "other passphrase",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginWrongCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "demo", Email: "demo@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "demo@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	_, svc := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "demo", Email: "demo@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
