// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"procura/internal/domain/goods_receipt"
	"procura/internal/domain/purchase_order"
	"procura/internal/domain/requests"
	"procura/internal/infrastructure/http/v1/handlers"
	"procura/internal/infrastructure/http/v1/middleware"
	"procura/internal/infrastructure/storage/postgres"
	"procura/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation; nil disables auth
	JWTValidator middleware.JWTValidator

	// Services
	Requests       *requests.Service
	PurchaseOrders *purchase_order.Service
	GoodsReceipts  *goods_receipt.Service

	// ActivityStore for entity history endpoints
	ActivityStore *postgres.ActivityStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	baseHandler := handlers.NewBaseHandler()

	requestHandler := handlers.NewAssetRequestHandler(baseHandler, cfg.Requests)
	api.POST("/asset-requests", requestHandler.Create)
	api.GET("/asset-requests", requestHandler.List)
	api.GET("/asset-requests/:id", requestHandler.GetByID)
	api.PUT("/asset-requests/:id/status", requestHandler.UpdateStatus)

	poHandler := handlers.NewPurchaseOrderHandler(baseHandler, cfg.PurchaseOrders)
	api.POST("/purchase-orders", poHandler.Create)
	api.GET("/purchase-orders", poHandler.List)
	api.GET("/purchase-orders/:id", poHandler.GetByID)
	api.PUT("/purchase-orders/:id/status", poHandler.UpdateStatus)
	api.POST("/purchase-orders/:id/items", poHandler.AddItem)
	api.PUT("/po-items/:id", poHandler.UpdateItem)
	api.DELETE("/po-items/:id", poHandler.DeleteItem)

	grHandler := handlers.NewGoodsReceiptHandler(baseHandler, cfg.GoodsReceipts)
	api.POST("/goods-receipts", grHandler.Create)
	api.GET("/goods-receipts", grHandler.List)
	api.GET("/goods-receipts/:id", grHandler.GetByID)
	api.PUT("/goods-receipts/:id/status", grHandler.UpdateStatus)
	api.PUT("/gr-items/:id", grHandler.UpdateItem)

	if cfg.ActivityStore != nil {
		activityHandler := handlers.NewActivityHandler(baseHandler, cfg.ActivityStore)
		api.GET("/activity/:entityType/:id", activityHandler.History)
	}

	return router
}
