package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"api_pos/internal/auth"
	"api_pos/internal/cash"
	"api_pos/internal/catalog"
	"api_pos/internal/config"
	"api_pos/internal/ledger"
	"api_pos/internal/reports"
	"api_pos/internal/sales"
	"api_pos/internal/storage/sqlite"
)

// InitRoutes wires every endpoint on the given Gin engine. It builds the
// services over the shared store and binds each HTTP method and path to the
// appropriate handler, with the capability middleware in front.
func InitRoutes(e *gin.Engine, cfg config.Config, store *sqlite.Store, logger *zap.Logger) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewAuthenticator(store)

	catalogService := catalog.NewService(store, logger)
	salesService := sales.NewService(store, logger, cfg.DefaultPosID)
	cashService := cash.NewService(store, logger)
	ledgerService := ledger.NewService(store, logger)
	reportsService := reports.NewService(store)

	authHandler := NewAuthHandler(authenticator, jwtManager, logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)
	salesHandler := NewSalesHandler(salesService, logger)
	cashHandler := NewCashHandler(cashService, logger)
	customersHandler := NewCustomersHandler(ledgerService, logger)
	reportsHandler := NewReportsHandler(reportsService, logger)

	e.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	if cfg.MetricsEnabled {
		e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	e.POST("/auth/login", authHandler.handleLogin)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authed := e.Group("/", AuthRequired(jwtManager))
	authed.GET("/me", authHandler.handleMe)

	// Catalog: reads for any authenticated user, mutations admin-only.
	authed.GET("/products", catalogHandler.handleSearchProducts)
	authed.GET("/products/:id", catalogHandler.handleGetProduct)
	authed.GET("/categories", catalogHandler.handleListCategories)
	admin := authed.Group("/", RequireAdmin())
	admin.POST("/products", catalogHandler.handleCreateProduct)
	admin.PUT("/products/:id", catalogHandler.handleUpdateProduct)
	admin.DELETE("/products/:id", catalogHandler.handleDeleteProduct)
	admin.POST("/categories", catalogHandler.handleCreateCategory)

	operator := authed.Group("/", RequireOperator())
	operator.POST("/sales", salesHandler.handleCreateSale)

	operator.GET("/cash/status", cashHandler.handleStatus)
	operator.POST("/cash/open", cashHandler.handleOpen)
	operator.POST("/cash/move", cashHandler.handleMove)
	operator.POST("/cash/close", cashHandler.handleClose)
	operator.GET("/cash/summary", cashHandler.handleSummary)
	operator.GET("/cash/summary.csv", cashHandler.handleSummaryCSV)

	authed.GET("/customers", customersHandler.handleSearchCustomers)
	authed.GET("/customers/:id", customersHandler.handleGetCustomer)
	admin.POST("/customers", customersHandler.handleCreateCustomer)
	admin.PUT("/customers/:id", customersHandler.handleUpdateCustomer)
	admin.DELETE("/customers/:id", customersHandler.handleDeactivateCustomer)
	operator.GET("/customers/:id/credit", customersHandler.handleCreditInfo)

	operator.GET("/accounts/summary", customersHandler.handleAccountsSummary)
	operator.GET("/accounts/:customerId/statement", customersHandler.handleStatement)
	operator.POST("/accounts/:customerId/pay", customersHandler.handleRegisterPayment)

	operator.GET("/reports/daily", reportsHandler.handleDaily)
	operator.GET("/reports/sales_detailed", reportsHandler.handleDetailed)
	operator.GET("/reports/by_category", reportsHandler.handleByCategory)
	operator.GET("/reports/by_product", reportsHandler.handleByProduct)
	operator.GET("/reports/by_method", reportsHandler.handleByMethod)
}
