// Package main is the entry point for the taller API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taller/internal/config"
	"taller/internal/domain/auth"
	"taller/internal/domain/catalogs/client"
	"taller/internal/domain/catalogs/item"
	"taller/internal/domain/catalogs/supplier"
	"taller/internal/domain/inventory"
	"taller/internal/domain/orders"
	"taller/internal/domain/quotations"
	v1 "taller/internal/infrastructure/http/v1"
	"taller/internal/infrastructure/sequence"
	"taller/internal/infrastructure/storage/postgres"
	"taller/internal/infrastructure/storage/postgres/auth_repo"
	"taller/internal/infrastructure/storage/postgres/catalog_repo"
	"taller/internal/infrastructure/storage/postgres/ledger_repo"
	"taller/internal/infrastructure/storage/postgres/order_repo"
	"taller/internal/infrastructure/storage/postgres/quotation_repo"
	"taller/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Info("starting taller server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DatabaseURL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	clientRepo := catalog_repo.NewClientRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	quotationRepo := quotation_repo.NewQuotationRepo(txManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)
	paymentRepo := order_repo.NewPaymentRepo(txManager)
	prefacturaRepo := order_repo.NewPrefacturaRepo(txManager)
	historyRepo := order_repo.NewHistoryRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Sequence allocator ---
	allocator := sequence.NewAllocator(txManager)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: time.Duration(cfg.JWT.ExpirationMinutes) * time.Minute,
	})
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Domain services ---
	clientService := client.NewService(clientRepo, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	itemService := item.NewService(itemRepo, itemRepo, allocator, txManager)
	inventoryService := inventory.NewService(ledgerRepo, txManager)
	orderService := orders.NewService(orderRepo, paymentRepo, prefacturaRepo, historyRepo, txManager)
	quotationService := quotations.NewService(quotationRepo, orderService, allocator, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		JWTValidator:     jwtService,
		AuthService:      authService,
		ClientService:    clientService,
		SupplierService:  supplierService,
		ItemService:      itemService,
		QuotationService: quotationService,
		OrderService:     orderService,
		InventoryService: inventoryService,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}
