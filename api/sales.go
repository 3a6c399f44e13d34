package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/sales"
)

// salesHandler implements the sale commit endpoint.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles POST /sales. The whole request commits or none of
// it does; an insufficient-stock rejection lists every deficient product.
func (h *salesHandler) handleCreateSale(c *gin.Context) {
	var req sales.SaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind sale request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	sale, err := h.salesService.Commit(c.Request.Context(), currentUser(c), req)
	if err != nil {
		var stockErr *sales.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": "Insufficient stock",
				"items":  stockErr.Items,
			})
		case errors.Is(err, sales.ErrRegisterClosed):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Open the register before selling."})
		case errors.Is(err, sales.ErrInvalidLine):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid item."})
		default:
			h.logger.Error("failed to create sale", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to create sale"})
		}
		return
	}

	c.JSON(http.StatusCreated, sale)
}
