package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/SergeiKhy/shortlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Формат дат в query-параметрах аналитики.
const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// PerLink godoc
// @Summary Per-link click analytics
// @Description Time series of clicks for one link identity, grouped by short code and date
// @Tags analytics
// @Produce json
// @Param linkId path string true "Link identity"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/analytics/url/{linkId} [get]
func (h *AnalyticsHandler) PerLink(c *gin.Context) {
	linkID := c.Param("linkId")

	var start, end *time.Time
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid startDate, expected YYYY-MM-DD"})
			return
		}
		start = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid endDate, expected YYYY-MM-DD"})
			return
		}
		end = &t
	}

	stats, err := h.service.PerLink(c.Request.Context(), linkID, start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Start date must be before end date."})
			return
		}
		h.logger.Error("Failed to aggregate per-link stats",
			zap.String("link_id", linkID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// Overview godoc
// @Summary Fleet-wide analytics overview
// @Description Totals and average clicks per link across all live links
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build analytics overview", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}
