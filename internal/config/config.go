package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Analytics AnalyticsDBConfig
	OAuth     OAuthConfig
	Session   SessionConfig
	Lock      LockConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port    string
	BaseURL string // Основа для short_url в ответах, например https://sh.example.com
}

type RedisConfig struct {
	Host string
	Port string
}

// AnalyticsDBConfig подключение к PostgreSQL, где живёт append-only
// таблица кликов.
type AnalyticsDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// OAuthConfig настройки внешнего identity provider. Сервис однопользовательский:
// сессия выдаётся только если provider вернул аккаунт AuthorizedLogin.
type OAuthConfig struct {
	ClientID        string
	ClientSecret    string
	AuthURL         string
	TokenURL        string
	UserInfoURL     string
	AuthorizedLogin string
}

type SessionConfig struct {
	TTL time.Duration
}

type LockConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	cfg.App.BaseURL = viper.GetString("APP_BASE_URL")
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")

	cfg.Analytics.Host = viper.GetString("ANALYTICS_DB_HOST")
	cfg.Analytics.Port = viper.GetString("ANALYTICS_DB_PORT")
	cfg.Analytics.User = viper.GetString("ANALYTICS_DB_USER")
	cfg.Analytics.Password = viper.GetString("ANALYTICS_DB_PASSWORD")
	cfg.Analytics.Name = viper.GetString("ANALYTICS_DB_NAME")

	cfg.OAuth.ClientID = viper.GetString("OAUTH_CLIENT_ID")
	cfg.OAuth.ClientSecret = viper.GetString("OAUTH_CLIENT_SECRET")
	cfg.OAuth.AuthURL = viper.GetString("OAUTH_AUTH_URL")
	cfg.OAuth.TokenURL = viper.GetString("OAUTH_TOKEN_URL")
	cfg.OAuth.UserInfoURL = viper.GetString("OAUTH_USERINFO_URL")
	cfg.OAuth.AuthorizedLogin = viper.GetString("OAUTH_AUTHORIZED_LOGIN")

	// TTL сессии: сутки по умолчанию
	cfg.Session.TTL = viper.GetDuration("SESSION_TTL")
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}

	// TTL advisory-блокировки: короткое окно, ограничивающее худший случай
	cfg.Lock.TTL = viper.GetDuration("LOCK_TTL")
	if cfg.Lock.TTL == 0 {
		cfg.Lock.TTL = 60 * time.Second
	}

	cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = viper.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 20
	}

	return &cfg, nil
}
