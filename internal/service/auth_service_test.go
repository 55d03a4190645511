package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortlink/internal/repository"
	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/SergeiKhy/shortlink/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(provider service.IdentityProvider) service.AuthService {
	kv := mocks.NewMockKeyValueStore()
	logger, _ := zap.NewDevelopment()
	sessions := repository.NewSessionRepository(kv, 24*time.Hour)
	return service.NewAuthService(provider, sessions, "owner", logger)
}

// TestAuthService_Callback_Success проверяет полный цикл: вход, валидная
// сессия, выход
func TestAuthService_Callback_Success(t *testing.T) {
	authService := setupAuth(&mocks.MockIdentityProvider{
		Credential: "upstream-token",
		Account:    "owner",
	})

	ctx := context.Background()
	sessionID, err := authService.HandleCallback(ctx, "auth-code")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	valid, err := authService.Validate(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, authService.Logout(ctx, sessionID))

	valid, err = authService.Validate(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, valid, "После выхода сессия недействительна")
}

// TestAuthService_Callback_WrongAccount проверяет отказ чужому аккаунту
func TestAuthService_Callback_WrongAccount(t *testing.T) {
	authService := setupAuth(&mocks.MockIdentityProvider{
		Credential: "upstream-token",
		Account:    "intruder",
	})

	ctx := context.Background()
	sessionID, err := authService.HandleCallback(ctx, "auth-code")

	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Empty(t, sessionID)
}

// TestAuthService_Validate_EmptySession проверяет, что пустой идентификатор
// сессии — просто невалидная сессия, а не ошибка
func TestAuthService_Validate_EmptySession(t *testing.T) {
	authService := setupAuth(&mocks.MockIdentityProvider{Account: "owner"})

	valid, err := authService.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, valid)
}

// TestAuthService_Validate_ExpiredSession проверяет, что сессия с истёкшим
// TTL невалидна
func TestAuthService_Validate_ExpiredSession(t *testing.T) {
	kv := mocks.NewMockKeyValueStore()
	logger, _ := zap.NewDevelopment()
	sessions := repository.NewSessionRepository(kv, time.Nanosecond)
	authService := service.NewAuthService(
		&mocks.MockIdentityProvider{Credential: "tok", Account: "owner"},
		sessions, "owner", logger,
	)

	ctx := context.Background()
	sessionID, err := authService.HandleCallback(ctx, "auth-code")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	valid, err := authService.Validate(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, valid)
}
