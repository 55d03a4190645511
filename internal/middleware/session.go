package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookieName имя cookie с идентификатором сессии.
const SessionCookieName = "session_id"

// SessionValidator проверяет сессию в хранилище. Узкий интерфейс, чтобы не
// тянуть в middleware весь auth-сервис.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (bool, error)
}

// RequireSession middleware, пропускающий только запросы с живой сессией.
// Валидность проверяется в хранилище на каждом запросе, без кэша.
func RequireSession(validator SessionValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			c.Abort()
			return
		}

		valid, err := validator.Validate(c.Request.Context(), sessionID)
		if err != nil {
			logger.Error("Сбой хранилища при проверке сессии", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Session check failed",
			})
			c.Abort()
			return
		}
		if !valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
