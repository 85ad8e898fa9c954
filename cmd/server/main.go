// Package main is the entry point for the procura API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procura/internal/domain/auth"
	"procura/internal/domain/goods_receipt"
	"procura/internal/domain/purchase_order"
	"procura/internal/domain/reconciliation"
	"procura/internal/domain/requests"
	"procura/internal/infrastructure/config"
	v1 "procura/internal/infrastructure/http/v1"
	"procura/internal/infrastructure/http/v1/middleware"
	"procura/internal/infrastructure/storage/postgres"
	"procura/internal/infrastructure/storage/postgres/procurement_repo"
	"procura/internal/infrastructure/storage/postgres/request_repo"
	"procura/pkg/docnum"
	"procura/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting procura server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute
	poolCfg.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Minute

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Stores ---
	requestRepo := request_repo.NewAssetRequestRepo(txManager)
	poRepo := procurement_repo.NewPurchaseOrderRepo(txManager)
	grRepo := procurement_repo.NewGoodsReceiptRepo(txManager)

	activityStore, err := postgres.NewActivityStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize activity store", "error", err)
	}

	// --- Services ---
	numbers := docnum.New()

	requestService := requests.NewService(requestRepo, txManager, numbers, activityStore)
	reconciler := reconciliation.NewService(grRepo, poRepo, txManager)
	poService := purchase_order.NewService(poRepo, requestRepo, txManager, numbers, activityStore)
	grService := goods_receipt.NewService(grRepo, poRepo, reconciler, txManager, numbers, activityStore)

	// --- JWT ---
	var validator middleware.JWTValidator
	if cfg.JWT.Enabled {
		jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
		jwtConfig.Issuer = cfg.JWT.Issuer
		jwtConfig.AccessTokenTTL = cfg.JWT.AccessTokenTTL
		validator = auth.NewJWTService(jwtConfig)
	} else {
		log.Warn("JWT auth disabled; API routes are unauthenticated")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   validator,
		Requests:       requestService,
		PurchaseOrders: poService,
		GoodsReceipts:  grService,
		ActivityStore:  activityStore,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
