package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/catalog"
)

// catalogHandler implements the product and category endpoints.
type catalogHandler struct {
	catalogService *catalog.Service
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *catalogHandler {
	return &catalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// handleSearchProducts handles GET /products. With ?barcode= it returns the
// single matching product; with ?query= it searches by name.
func (h *catalogHandler) handleSearchProducts(c *gin.Context) {
	barcode := c.Query("barcode")
	query := c.Query("query")

	products, err := h.catalogService.Search(c.Request.Context(), barcode, query)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "product not found"})
			return
		}
		h.logger.Error("failed to search products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to search products"})
		return
	}

	// A barcode lookup returns the bare product, like a detail fetch.
	if barcode != "" && len(products) == 1 {
		c.JSON(http.StatusOK, products[0])
		return
	}
	c.JSON(http.StatusOK, products)
}

// handleGetProduct handles GET /products/:id.
func (h *catalogHandler) handleGetProduct(c *gin.Context) {
	p, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "product not found"})
			return
		}
		h.logger.Error("failed to get product", zap.String("product_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleCreateProduct handles POST /products.
func (h *catalogHandler) handleCreateProduct(c *gin.Context) {
	var req catalog.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	p, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondCatalogError(c, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// handleUpdateProduct handles PUT /products/:id.
func (h *catalogHandler) handleUpdateProduct(c *gin.Context) {
	var req catalog.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	p, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondCatalogError(c, err, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleDeleteProduct handles DELETE /products/:id.
func (h *catalogHandler) handleDeleteProduct(c *gin.Context) {
	err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondCatalogError(c, err, "failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleListCategories handles GET /categories.
func (h *catalogHandler) handleListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// handleCreateCategory handles POST /categories.
func (h *catalogHandler) handleCreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request payload"})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *catalogHandler) respondCatalogError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "product not found"})
	case errors.Is(err, catalog.ErrDuplicateBarcode), errors.Is(err, catalog.ErrProductInUse):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		// Validation failures come back as plain errors from the service.
		if isInternal(err) {
			h.logger.Error(logMsg, zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": logMsg})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	}
}

// isInternal distinguishes wrapped storage failures from simple input
// validation errors.
func isInternal(err error) bool {
	return errors.Unwrap(err) != nil
}
