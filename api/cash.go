package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"api_pos/internal/cash"
)

// cashHandler implements the register session endpoints.
type cashHandler struct {
	cashService *cash.Service
	logger      *zap.Logger
}

// NewCashHandler creates a new cash handler.
func NewCashHandler(cashService *cash.Service, logger *zap.Logger) *cashHandler {
	return &cashHandler{
		cashService: cashService,
		logger:      logger,
	}
}

// handleStatus handles GET /cash/status.
func (h *cashHandler) handleStatus(c *gin.Context) {
	status, err := h.cashService.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get cash status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get cash status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// handleOpen handles POST /cash/open.
func (h *cashHandler) handleOpen(c *gin.Context) {
	var req struct {
		OpeningAmount decimal.Decimal `json:"opening_amount"`
		Notes         string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	session, err := h.cashService.Open(c.Request.Context(), currentUser(c), req.OpeningAmount, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, cash.ErrSessionAlreadyOpen):
			c.JSON(http.StatusConflict, gin.H{"detail": "A cash session is already open."})
		case errors.Is(err, cash.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("failed to open cash session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to open cash session"})
		}
		return
	}
	c.JSON(http.StatusCreated, session)
}

// handleMove handles POST /cash/move.
func (h *cashHandler) handleMove(c *gin.Context) {
	var req struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
		Reason string          `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	movement, err := h.cashService.Move(c.Request.Context(), req.Type, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, cash.ErrNoOpenSession):
			c.JSON(http.StatusConflict, gin.H{"detail": "No open cash session."})
		case errors.Is(err, cash.ErrInvalidAmount), errors.Is(err, cash.ErrInvalidMovementType):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("failed to record cash movement", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to record cash movement"})
		}
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// handleClose handles POST /cash/close. Closing is terminal.
func (h *cashHandler) handleClose(c *gin.Context) {
	var req struct {
		ClosingAmount decimal.Decimal `json:"closing_amount"`
		Notes         string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	session, err := h.cashService.Close(c.Request.Context(), currentUser(c), req.ClosingAmount, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, cash.ErrNoOpenSession):
			c.JSON(http.StatusConflict, gin.H{"detail": "No open cash session."})
		case errors.Is(err, cash.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("failed to close cash session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to close cash session"})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleSummary handles GET /cash/summary, optionally for a given
// ?session_id, defaulting to the current (or last) session.
func (h *cashHandler) handleSummary(c *gin.Context) {
	summary, err := h.summary(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleSummaryCSV handles GET /cash/summary.csv: the same reconciliation
// rendered as the fixed two-column export.
func (h *cashHandler) handleSummaryCSV(c *gin.Context) {
	summary, err := h.summary(c)
	if err != nil {
		return
	}

	closed := time.Now()
	if summary.ClosedAt != nil {
		closed = *summary.ClosedAt
	}
	filename := fmt.Sprintf("cash_%s_%s.csv", summary.SessionID, closed.Format("2006-01-02"))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(summary.CSVRows()); err != nil {
		h.logger.Error("failed to write summary csv", zap.Error(err))
	}
}

// summary resolves the session and writes the error response itself on
// failure, signalling the caller with a non-nil error.
func (h *cashHandler) summary(c *gin.Context) (*cash.Summary, error) {
	summary, err := h.cashService.Summary(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		switch {
		case errors.Is(err, cash.ErrSessionNotFound), errors.Is(err, cash.ErrNoOpenSession):
			c.JSON(http.StatusNotFound, gin.H{"detail": "No cash sessions."})
		default:
			h.logger.Error("failed to summarize cash session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to summarize cash session"})
		}
		return nil, err
	}
	return summary, nil
}
