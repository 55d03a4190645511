package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeiKhy/shortlink/internal/config"
	"golang.org/x/oauth2"
)

// IdentityProvider внешний OAuth-провайдер: обменивает authorization code на
// учётные данные и возвращает стабильный идентификатор аккаунта. Изнутри
// сервиса это единственная операция — "аутентифицируй и назови аккаунт".
type IdentityProvider interface {
	Authenticate(ctx context.Context, code string) (credential, account string, err error)
}

type oauthIdentityProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewIdentityProvider создаёт клиента провайдера по конфигурации; endpoint-ы
// задаются URL-ами, провайдер взаимозаменяем.
func NewIdentityProvider(cfg config.OAuthConfig) IdentityProvider {
	return &oauthIdentityProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// userInfo минимальный ответ userinfo-эндпоинта: стабильный логин аккаунта.
type userInfo struct {
	Login string `json:"login"`
}

func (p *oauthIdentityProvider) Authenticate(ctx context.Context, code string) (string, string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("failed to decode userinfo: %w", err)
	}

	return token.AccessToken, info.Login, nil
}
