package handler

import (
	"net/http"

	"github.com/SergeiKhy/shortlink/internal/middleware"
	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps зависимости роутера: явный request-scoped контекст вместо
// глобальных синглтонов.
type RouterDeps struct {
	LinkService      service.LinkService
	ClickProcessor   service.ClickProcessor
	AnalyticsService service.AnalyticsService
	AuthService      service.AuthService
	RateLimiter      *middleware.RateLimiter
	BaseURL          string
	SessionTTLSec    int
	Logger           *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		deps.Logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Rate limiting для всех запросов
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	linkHandler := NewLinkHandler(deps.LinkService, deps.ClickProcessor, deps.BaseURL, deps.Logger)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsService, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.SessionTTLSec, deps.Logger)

	// Аутентификация
	auth := router.Group("/auth")
	{
		auth.POST("/callback", authHandler.Callback)
		auth.GET("/validate", authHandler.Validate)
		auth.POST("/logout", authHandler.Logout)
	}

	api := router.Group("/api")
	{
		api.GET("/ping", Ping)

		// Все остальные /api/* роуты — только с живой сессией
		protected := api.Group("")
		protected.Use(middleware.RequireSession(deps.AuthService, deps.Logger))
		{
			protected.POST("/shorten", linkHandler.Shorten)
			protected.GET("/dashboard/all", linkHandler.ListLinks)
			protected.DELETE("/dashboard/:code", linkHandler.DeleteLink)
			protected.POST("/dashboard/clear", linkHandler.ClearLinks)
			protected.GET("/analytics/url/:linkId", analyticsHandler.PerLink)
			protected.GET("/analytics/overview", analyticsHandler.Overview)
		}
	}

	// Редирект (корневой путь) — публичный
	router.GET("/:code", linkHandler.Redirect)

	return router
}

// Ping godoc
// @Summary Ping
// @Description Health check endpoint
// @Tags service
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shortlink",
	})
}
