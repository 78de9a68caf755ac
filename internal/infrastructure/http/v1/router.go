// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"taller/internal/domain/auth"
	"taller/internal/domain/catalogs/client"
	"taller/internal/domain/catalogs/item"
	"taller/internal/domain/catalogs/supplier"
	"taller/internal/domain/inventory"
	"taller/internal/domain/orders"
	"taller/internal/domain/quotations"
	"taller/internal/infrastructure/http/v1/handlers"
	"taller/internal/infrastructure/http/v1/middleware"
	"taller/internal/infrastructure/storage/postgres"
	"taller/pkg/logger"
)

// RouterConfig holds the wired services for the router.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService      *auth.Service
	ClientService    *client.Service
	SupplierService  *supplier.Service
	ItemService      *item.Service
	QuotationService *quotations.Service
	OrderService     *orders.Service
	InventoryService *inventory.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	v1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		v1.POST("/auth/login", authHandler.Login)

		// Everything else requires a valid token
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerAuthRoutes(protected, authHandler)
		registerCatalogRoutes(protected, base, cfg)
		registerQuotationRoutes(protected, base, cfg)
		registerOrderRoutes(protected, base, cfg)
		registerInventoryRoutes(protected, base, cfg)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	rg.GET("/auth/me", authHandler.Me)
	rg.POST("/auth/register", middleware.RequireRole(auth.RoleAdmin), authHandler.Register)
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	clientHandler := handlers.NewClientHandler(base, cfg.ClientService)
	clients := rg.Group("/clients")
	{
		clients.POST("", clientHandler.Create)
		clients.GET("", clientHandler.List)
		clients.GET("/:id", clientHandler.Get)
		clients.PUT("/:id", clientHandler.Update)
		clients.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), clientHandler.Delete)
	}

	supplierHandler := handlers.NewSupplierHandler(base, cfg.SupplierService)
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", supplierHandler.Create)
		suppliers.GET("", supplierHandler.List)
		suppliers.GET("/:id", supplierHandler.Get)
		suppliers.PUT("/:id", supplierHandler.Update)
		suppliers.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), supplierHandler.Delete)
	}

	itemHandler := handlers.NewItemHandler(base, cfg.ItemService)
	items := rg.Group("/items")
	{
		items.POST("", itemHandler.Create)
		items.GET("", itemHandler.List)
		items.GET("/code/:code", itemHandler.GetByCode)
		items.GET("/:id", itemHandler.Get)
		items.PUT("/:id", itemHandler.Update)
		items.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), itemHandler.Delete)
	}

	additions := rg.Group("/additions")
	{
		additions.POST("", itemHandler.CreateAddition)
		additions.GET("", itemHandler.ListAdditions)
		additions.GET("/:id", itemHandler.GetAddition)
		additions.PUT("/:id", itemHandler.UpdateAddition)
		additions.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), itemHandler.DeleteAddition)
	}
}

func registerQuotationRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	quotationHandler := handlers.NewQuotationHandler(base, cfg.QuotationService)
	quotationsGroup := rg.Group("/quotations")
	{
		quotationsGroup.POST("", quotationHandler.Create)
		quotationsGroup.GET("", quotationHandler.List)
		quotationsGroup.GET("/:id", quotationHandler.Get)
		quotationsGroup.PUT("/:id", quotationHandler.Update)
		quotationsGroup.DELETE("/:id", quotationHandler.Delete)
		quotationsGroup.POST("/:id/send", quotationHandler.Send)
		quotationsGroup.POST("/:id/accept", quotationHandler.Accept)
		quotationsGroup.POST("/:id/reject", quotationHandler.Reject)
	}
}

func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService)
	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("", orderHandler.Create)
		ordersGroup.GET("", orderHandler.List)
		ordersGroup.GET("/:id", orderHandler.Get)
		ordersGroup.POST("/:id/status", orderHandler.AdvanceStatus)
		ordersGroup.GET("/:id/history", orderHandler.History)
		ordersGroup.GET("/:id/prefactura", orderHandler.Prefactura)
		ordersGroup.POST("/:id/prefactura/invoice", middleware.RequireRole(auth.RoleAccounting), orderHandler.InvoicePrefactura)
		ordersGroup.POST("/:id/payments", middleware.RequireRole(auth.RoleAccounting), orderHandler.CreatePayment)
		ordersGroup.GET("/:id/payments", orderHandler.ListPayments)
	}

	payments := rg.Group("/payments", middleware.RequireRole(auth.RoleAccounting))
	{
		payments.PUT("/:id", orderHandler.UpdatePayment)
		payments.POST("/:id/void", orderHandler.VoidPayment)
		payments.DELETE("/:id", orderHandler.DeletePayment)
	}
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	inventoryHandler := handlers.NewInventoryHandler(base, cfg.InventoryService)
	inv := rg.Group("/inventory")
	{
		inv.POST("/entries", inventoryHandler.CreateEntry)
		inv.DELETE("/entries/:id", inventoryHandler.DeleteEntry)
		inv.POST("/outputs", inventoryHandler.CreateOutput)
		inv.PUT("/outputs/:id", inventoryHandler.EditOutput)
		inv.DELETE("/outputs/:id", inventoryHandler.DeleteOutput)
		inv.GET("/items/:id/entries", inventoryHandler.ListEntries)
		inv.GET("/items/:id/outputs", inventoryHandler.ListOutputs)
		inv.GET("/items/:id/levels", inventoryHandler.Levels)
		inv.GET("/low-stock", inventoryHandler.LowStock)
	}
}
