package service

import (
	"context"
	"errors"

	"github.com/SergeiKhy/shortlink/internal/repository"
	"go.uber.org/zap"
)

// ErrUnauthorized аккаунт провайдера не совпал с единственным разрешённым.
var ErrUnauthorized = errors.New("account not authorized")

// AuthService жизненный цикл сессии. Сервис однопользовательский: сессию
// получает только владелец аккаунта authorizedLogin.
type AuthService interface {
	// HandleCallback обменивает authorization code на сессию.
	HandleCallback(ctx context.Context, code string) (string, error)
	// Validate проверяет сессию в хранилище; не кэширует.
	Validate(ctx context.Context, sessionID string) (bool, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	provider        IdentityProvider
	sessions        repository.SessionRepository
	authorizedLogin string
	logger          *zap.Logger
}

func NewAuthService(
	provider IdentityProvider,
	sessions repository.SessionRepository,
	authorizedLogin string,
	logger *zap.Logger,
) AuthService {
	return &authService{
		provider:        provider,
		sessions:        sessions,
		authorizedLogin: authorizedLogin,
		logger:          logger,
	}
}

func (s *authService) HandleCallback(ctx context.Context, code string) (string, error) {
	credential, account, err := s.provider.Authenticate(ctx, code)
	if err != nil {
		s.logger.Error("Сбой identity provider при обмене кода", zap.Error(err))
		return "", err
	}

	if account != s.authorizedLogin {
		s.logger.Info("Попытка входа с чужим аккаунтом", zap.String("account", account))
		return "", ErrUnauthorized
	}

	sessionID, err := s.sessions.Create(ctx, credential)
	if err != nil {
		s.logger.Error("Не удалось создать сессию", zap.Error(err))
		return "", err
	}

	return sessionID, nil
}

func (s *authService) Validate(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.sessions.Validate(ctx, sessionID)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
