package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/shortlink/internal/middleware"
	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookieName имя cookie с идентификатором сессии.
const SessionCookieName = middleware.SessionCookieName

type AuthHandler struct {
	service    service.AuthService
	sessionTTL int // секунды, для Max-Age cookie
	logger     *zap.Logger
}

func NewAuthHandler(service service.AuthService, sessionTTLSeconds int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		sessionTTL: sessionTTLSeconds,
		logger:     logger,
	}
}

type CallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// Callback godoc
// @Summary OAuth callback
// @Description Exchange an authorization code for a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CallbackRequest true "Authorization code"
// @Success 200 {object} map[string]any
// @Failure 401 {object} ErrorResponse
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "code is required"})
		return
	}

	sessionID, err := h.service.HandleCallback(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Account not authorized"})
			return
		}
		h.logger.Error("OAuth callback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Authentication failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, h.sessionTTL, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Validate godoc
// @Summary Validate session
// @Description Report whether the current session cookie is valid
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	sessionID, _ := c.Cookie(SessionCookieName)

	valid, err := h.service.Validate(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Session validation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Validation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "valid": valid})
}

// Logout godoc
// @Summary Logout
// @Description Destroy the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err == nil && sessionID != "" {
		if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
			// Сессию добьёт TTL; выходу это не мешает
			h.logger.Warn("Failed to delete session on logout", zap.Error(err))
		}
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
