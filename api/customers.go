package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"api_pos/internal/ledger"
)

// customersHandler implements the customer and running-account endpoints.
type customersHandler struct {
	ledgerService *ledger.Service
	logger        *zap.Logger
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(ledgerService *ledger.Service, logger *zap.Logger) *customersHandler {
	return &customersHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// handleSearchCustomers handles GET /customers?query=.
func (h *customersHandler) handleSearchCustomers(c *gin.Context) {
	customers, err := h.ledgerService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.logger.Error("failed to search customers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to search customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// handleGetCustomer handles GET /customers/:id.
func (h *customersHandler) handleGetCustomer(c *gin.Context) {
	customer, err := h.ledgerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLedgerError(c, err, "failed to get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// handleCreateCustomer handles POST /customers.
func (h *customersHandler) handleCreateCustomer(c *gin.Context) {
	var req ledger.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	customer, err := h.ledgerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.respondLedgerError(c, err, "failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// handleUpdateCustomer handles PUT /customers/:id.
func (h *customersHandler) handleUpdateCustomer(c *gin.Context) {
	var req ledger.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	customer, err := h.ledgerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondLedgerError(c, err, "failed to update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// handleDeactivateCustomer handles DELETE /customers/:id. The customer is
// deactivated, never removed; the entry history stays intact.
func (h *customersHandler) handleDeactivateCustomer(c *gin.Context) {
	if err := h.ledgerService.DeactivateCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLedgerError(c, err, "failed to deactivate customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleCreditInfo handles GET /customers/:id/credit, returning the
// customer's credit settings next to the live balance.
func (h *customersHandler) handleCreditInfo(c *gin.Context) {
	customer, err := h.ledgerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLedgerError(c, err, "failed to get customer")
		return
	}
	balance, err := h.ledgerService.Balance(c.Request.Context(), customer.ID)
	if err != nil {
		h.respondLedgerError(c, err, "failed to get balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer_id":      customer.ID,
		"credit_limit":     customer.CreditLimit,
		"allow_over_limit": customer.AllowOverLimit,
		"balance":          balance,
	})
}

// handleStatement handles GET /accounts/:customerId/statement.
func (h *customersHandler) handleStatement(c *gin.Context) {
	statement, err := h.ledgerService.Statement(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		h.respondLedgerError(c, err, "failed to build statement")
		return
	}
	c.JSON(http.StatusOK, statement)
}

// handleRegisterPayment handles POST /accounts/:customerId/pay.
func (h *customersHandler) handleRegisterPayment(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Notes  string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	entry, err := h.ledgerService.RegisterPayment(c.Request.Context(), c.Param("customerId"), req.Amount, req.Notes)
	if err != nil {
		h.respondLedgerError(c, err, "failed to register payment")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// handleAccountsSummary handles GET /accounts/summary: every active customer
// with a non-zero balance, largest debt first.
func (h *customersHandler) handleAccountsSummary(c *gin.Context) {
	rows, err := h.ledgerService.AccountsSummary(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to summarize accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to summarize accounts"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *customersHandler) respondLedgerError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, ledger.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "customer not found"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		if isInternal(err) {
			h.logger.Error(logMsg, zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": logMsg})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	}
}
