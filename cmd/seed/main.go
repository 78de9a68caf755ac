// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"taller/internal/core/apperror"
	"taller/internal/core/types"
	"taller/internal/domain/auth"
	"taller/internal/domain/catalogs/client"
	"taller/internal/domain/catalogs/item"
	"taller/internal/domain/catalogs/supplier"
	"taller/internal/infrastructure/sequence"
	"taller/internal/infrastructure/storage/postgres"
	"taller/internal/infrastructure/storage/postgres/auth_repo"
	"taller/internal/infrastructure/storage/postgres/catalog_repo"
	"taller/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@taller.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	userRepo := auth_repo.NewUserRepo(txm)
	// The seed tool never issues tokens; the JWT service is only a
	// constructor dependency here.
	authService := auth.NewService(userRepo, txm, auth.NewJWTService(auth.DefaultJWTConfig("seed")), auth.DefaultServiceConfig())

	user, err := authService.Register(ctx, adminEmail, adminPassword, "Administrator", nil)
	if apperror.IsDuplicate(err) {
		log.Infow("admin user already exists", "email", adminEmail)
		return nil
	}
	if err != nil {
		return err
	}

	user.IsAdmin = true
	if err := userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", user.ID.String())
	return nil
}

func seedDemoData(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	allocator := sequence.NewAllocator(txm)

	clientService := client.NewService(catalog_repo.NewClientRepo(txm), txm)
	supplierService := supplier.NewService(catalog_repo.NewSupplierRepo(txm), txm)
	itemRepo := catalog_repo.NewItemRepo(txm)
	itemService := item.NewService(itemRepo, itemRepo, allocator, txm)

	demoClient := client.NewClient("CLI01", "Uniformes del Norte")
	if err := clientService.Create(ctx, demoClient); err != nil && !apperror.IsDuplicate(err) {
		return fmt.Errorf("seed client: %w", err)
	}

	demoSupplier := supplier.NewSupplier("PRV01", "Textiles La Fe")
	if err := supplierService.Create(ctx, demoSupplier); err != nil && !apperror.IsDuplicate(err) {
		return fmt.Errorf("seed supplier: %w", err)
	}

	demoItems := []*item.Item{
		item.NewItem("Tela gabardina azul", "Telas", item.UnitMeter),
		item.NewItem("Tela gabardina blanca", "Telas", item.UnitMeter),
		item.NewItem("Botones 20mm", "Botones", item.UnitPiece),
	}
	for _, it := range demoItems {
		it.MinimumStock = types.NewQuantityFromFloat64(10)
		if err := itemService.Create(ctx, it); err != nil && !apperror.IsDuplicate(err) {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
	}

	demoAddition := item.NewAddition("Bordado de logotipo", "Bordados", types.NewMoney(45))
	if err := itemService.CreateAddition(ctx, demoAddition); err != nil && !apperror.IsDuplicate(err) {
		return fmt.Errorf("seed addition: %w", err)
	}

	log.Info("demo data seeded")
	return nil
}
