package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/service"
)

type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
}

// GetStatusOverview returns order counts per lifecycle status.
func (h *AnalyticsHandler) GetStatusOverview(c *gin.Context) {
	overview, err := h.Analytics.StatusOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetThroughput returns completed orders per day for the requested period
// (query param period_days, default 7).
func (h *AnalyticsHandler) GetThroughput(c *gin.Context) {
	days := 7
	if q := c.Query("period_days"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period_days must be an integer"})
			return
		}
		days = parsed
	}

	throughput, err := h.Analytics.Throughput(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, throughput)
}

// GetCycleTime returns the average creation-to-completion time of done orders.
func (h *AnalyticsHandler) GetCycleTime(c *gin.Context) {
	summary, err := h.Analytics.CycleTime(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
