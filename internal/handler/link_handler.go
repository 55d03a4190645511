package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service        service.LinkService
	clickProcessor service.ClickProcessor
	logger         *zap.Logger
	baseURL        string
}

func NewLinkHandler(
	service service.LinkService,
	clickProcessor service.ClickProcessor,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:        service,
		clickProcessor: clickProcessor,
		logger:         logger,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
	}
}

type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required"`
	ShortCode   string `json:"shortCode,omitempty"`
	// Expiration unix-время в миллисекундах; -1 или отсутствие — без срока
	Expiration  *int64 `json:"expiration,omitempty"`
	Description string `json:"description,omitempty"`
}

type ShortenResponse struct {
	Success     bool   `json:"success"`
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DashboardResponse struct {
	Success bool           `json:"success"`
	Data    []*models.Link `json:"data"`
}

// Shorten godoc
// @Summary Create a short link
// @Description Create a new shortened URL
// @Tags links
// @Accept json
// @Produce json
// @Param request body ShortenRequest true "Link creation request"
// @Success 201 {object} ShortenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/shorten [post]
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "originalUrl is required"})
		return
	}

	input := &models.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		Description: req.Description,
	}
	if req.ShortCode != "" {
		input.CustomCode = &req.ShortCode
	}
	// Сентинел -1 означает "без срока жизни"
	if req.Expiration != nil && *req.Expiration != -1 {
		t := time.UnixMilli(*req.Expiration)
		input.ExpiresAt = &t
	}

	link, err := h.service.CreateLink(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCodeExists):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Short code already exists"})
		case errors.Is(err, repository.ErrLockBusy):
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "URL is being processed, try again"})
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid URL format"})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Custom code must be 4-12 alphanumeric characters"})
		default:
			h.logger.Error("Failed to create link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create link"})
		}
		return
	}

	c.JSON(http.StatusCreated, ShortenResponse{
		Success:     true,
		ShortURL:    h.baseURL + "/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
	})
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by short code
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.service.GetLink(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.logger.Info("Link not found", zap.String("code", code))
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Link not found or expired"})
			return
		}
		h.logger.Error("Failed to resolve link", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to resolve link"})
		return
	}

	// Асинхронная запись клика; редирект её не ждёт и от её ошибок не зависит
	event := clickEventFromRequest(c, link)
	if err := h.clickProcessor.RecordClick(c.Request.Context(), event); err != nil {
		h.logger.Debug("Failed to enqueue click (non-blocking)", zap.Error(err))
	}

	c.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// DeleteLink godoc
// @Summary Delete a short link
// @Description Delete a shortened URL by short code
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /api/dashboard/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	code := c.Param("code")

	if err := h.service.DeleteLink(c.Request.Context(), code); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Link not found"})
			return
		}
		h.logger.Error("Failed to delete link", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to delete link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Link deleted"})
}

// ListLinks godoc
// @Summary List all links
// @Description List all live short links
// @Tags links
// @Produce json
// @Success 200 {object} DashboardResponse
// @Router /api/dashboard/all [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	links, err := h.service.ListLinks(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to list links"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{Success: true, Data: links})
}

// ClearLinks godoc
// @Summary Clear all links
// @Description Administrative bulk delete of all link records
// @Tags links
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dashboard/clear [post]
func (h *LinkHandler) ClearLinks(c *gin.Context) {
	count, err := h.service.ClearLinks(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to clear links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to clear links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": count})
}

// clickEventFromRequest собирает событие клика из geo-заголовков прокси.
// Если заголовков нет, событие окажется без контекста и будет пропущено
// процессором целиком.
func clickEventFromRequest(c *gin.Context, link *models.Link) *models.ClickEvent {
	lat, _ := strconv.ParseFloat(c.GetHeader("X-Geo-Latitude"), 64)
	lng, _ := strconv.ParseFloat(c.GetHeader("X-Geo-Longitude"), 64)

	return &models.ClickEvent{
		LinkID:    link.LinkID,
		ShortCode: link.ShortCode,
		City:      c.GetHeader("X-Geo-City"),
		Country:   c.GetHeader("X-Geo-Country"),
		Region:    c.GetHeader("X-Geo-Region"),
		Timezone:  c.GetHeader("X-Geo-Timezone"),
		Latitude:  lat,
		Longitude: lng,
	}
}
