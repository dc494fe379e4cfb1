package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/config"
	"github.com/flightworks/aeroops-api/internal/infrastructure/database"
	"github.com/flightworks/aeroops-api/internal/infrastructure/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/handler"
	"github.com/flightworks/aeroops-api/internal/presentation/http/routes"
	"github.com/flightworks/aeroops-api/pkg/money"
	"github.com/flightworks/aeroops-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	itemRepo := repository.NewInvoiceItemRepository(db)
	ledgerRepo := repository.NewLedgerEntryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	aircraftRepo := repository.NewAircraftRepository(db)
	trainingRepo := repository.NewTrainingRecordRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Purge expired idempotency keys so the replay store doesn't grow forever
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
				log.Printf("Warning: failed to purge expired idempotency keys: %v", err)
			}
		}
	}()

	// Resolve billing defaults
	taxRate, err := decimal.NewFromString(cfg.Billing.TaxRate)
	if err != nil {
		log.Printf("Warning: invalid BILLING_TAX_RATE %q, using default", cfg.Billing.TaxRate)
		taxRate = money.DefaultTaxRate
	}
	billingDefaults := service.BillingDefaults{
		TaxRate: taxRate,
		DueDays: cfg.Billing.DueDays,
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	invoiceService := service.NewInvoiceService(txManager, invoiceRepo, itemRepo, ledgerRepo, userRepo, bookingRepo, billingDefaults)
	paymentService := service.NewPaymentService(txManager, invoiceRepo, paymentRepo, ledgerRepo)
	bookingService := service.NewBookingService(bookingRepo)
	aircraftService := service.NewAircraftService(aircraftRepo)
	checkinService := service.NewCheckinService(txManager, bookingRepo, aircraftRepo, trainingRepo, invoiceRepo, invoiceService)
	correctionService := service.NewCorrectionService(txManager, bookingRepo, aircraftRepo, ledgerRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, paymentService),
		Booking:  handler.NewBookingHandler(bookingService, checkinService, correctionService),
		Aircraft: handler.NewAircraftHandler(aircraftService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
