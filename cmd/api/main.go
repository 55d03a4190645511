package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/shortlink/internal/config"
	"github.com/SergeiKhy/shortlink/internal/handler"
	"github.com/SergeiKhy/shortlink/internal/middleware"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"github.com/SergeiKhy/shortlink/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Подключение к analytics sink (postgres)
	db, err := repository.NewPostgresDB(cfg.Analytics)
	if err != nil {
		logger.Fatal("Failed to connect to analytics database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	if err := db.InitSchema(context.Background()); err != nil {
		logger.Fatal("Failed to init analytics schema", zap.Error(err))
	}

	// Подключение к Redis (KV-хранилище)
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев поверх KV
	kv := repository.NewKeyValueStore(redis)
	linkRepo := repository.NewLinkRepository(kv, logger)
	identityRepo := repository.NewIdentityRepository(kv)
	locks := repository.NewDistributedLock(kv, cfg.Lock.TTL, logger)
	sessionRepo := repository.NewSessionRepository(kv, cfg.Session.TTL)
	clickRepo := repository.NewClickRepository(db)

	// Инициализация сервисов
	linkService := service.NewLinkService(linkRepo, identityRepo, locks, logger)
	analyticsService := service.NewAnalyticsService(clickRepo, linkRepo, logger)
	identityProvider := service.NewIdentityProvider(cfg.OAuth)
	authService := service.NewAuthService(identityProvider, sessionRepo, cfg.OAuth.AuthorizedLogin, logger)

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(clickRepo, logger)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})

	// Настройка роутера
	router := handler.NewRouter(handler.RouterDeps{
		LinkService:      linkService,
		ClickProcessor:   clickProcessor,
		AnalyticsService: analyticsService,
		AuthService:      authService,
		RateLimiter:      rateLimiter,
		BaseURL:          cfg.App.BaseURL,
		SessionTTLSec:    int(cfg.Session.TTL.Seconds()),
		Logger:           logger,
	})

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
