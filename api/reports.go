package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/reports"
)

// reportsHandler implements the read-only sales aggregations.
type reportsHandler struct {
	reportsService *reports.Service
	logger         *zap.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reportsService *reports.Service, logger *zap.Logger) *reportsHandler {
	return &reportsHandler{
		reportsService: reportsService,
		logger:         logger,
	}
}

// handleDaily handles GET /reports/daily?date=YYYY-MM-DD, defaulting to today.
func (h *reportsHandler) handleDaily(c *gin.Context) {
	day, ok := h.parseDate(c, "date", time.Now())
	if !ok {
		return
	}
	report, err := h.reportsService.Daily(c.Request.Context(), day)
	if err != nil {
		h.logger.Error("failed to build daily report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleDetailed handles GET /reports/sales_detailed?from=&to=.
func (h *reportsHandler) handleDetailed(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}
	results, err := h.reportsService.Detailed(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build detailed report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// handleByCategory handles GET /reports/by_category?from=&to=.
func (h *reportsHandler) handleByCategory(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}
	rows, err := h.reportsService.ByCategory(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build category report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleByProduct handles GET /reports/by_product?from=&to=.
func (h *reportsHandler) handleByProduct(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}
	rows, err := h.reportsService.ByProduct(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build product report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleByMethod handles GET /reports/by_method?from=&to=.
func (h *reportsHandler) handleByMethod(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}
	rows, err := h.reportsService.ByMethod(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build method report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// window parses the from/to date params, both defaulting to today, and
// expands them into a closed timestamp window.
func (h *reportsHandler) window(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from, ok := h.parseDate(c, "from", now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.parseDate(c, "to", now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, end := reports.DayWindow(from, to)
	return start, end, true
}

func (h *reportsHandler) parseDate(c *gin.Context, param string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return fallback, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
