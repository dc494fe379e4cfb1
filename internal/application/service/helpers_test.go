package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/infrastructure/repository"
	"github.com/flightworks/aeroops-api/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database. A unique shared-cache
// DSN keeps the database alive across pooled connections, and a single open
// connection stands in for Postgres row locking in tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.Aircraft{},
		&entity.Booking{},
		&entity.TrainingRecord{},
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.LedgerEntry{},
		&entity.Payment{},
		&entity.IdempotencyKey{},
	))

	return db
}

// testEnv bundles the services under test with direct repository access for
// seeding and assertions.
type testEnv struct {
	db          *gorm.DB
	invoices    *service.InvoiceService
	payments    *service.PaymentService
	checkins    *service.CheckinService
	corrections *service.CorrectionService

	bookingRepo  domainRepo.BookingRepository
	aircraftRepo domainRepo.AircraftRepository
	ledgerRepo   domainRepo.LedgerEntryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	itemRepo := repository.NewInvoiceItemRepository(db)
	ledgerRepo := repository.NewLedgerEntryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	aircraftRepo := repository.NewAircraftRepository(db)
	trainingRepo := repository.NewTrainingRecordRepository(db)

	defaults := service.BillingDefaults{TaxRate: money.DefaultTaxRate, DueDays: 14}
	invoices := service.NewInvoiceService(tx, invoiceRepo, itemRepo, ledgerRepo, userRepo, bookingRepo, defaults)

	return &testEnv{
		db:           db,
		invoices:     invoices,
		payments:     service.NewPaymentService(tx, invoiceRepo, paymentRepo, ledgerRepo),
		checkins:     service.NewCheckinService(tx, bookingRepo, aircraftRepo, trainingRepo, invoiceRepo, invoices),
		corrections:  service.NewCorrectionService(tx, bookingRepo, aircraftRepo, ledgerRepo),
		bookingRepo:  bookingRepo,
		aircraftRepo: aircraftRepo,
		ledgerRepo:   ledgerRepo,
	}
}

func (e *testEnv) seedUser(t *testing.T) *entity.User {
	t.Helper()

	user := &entity.User{
		ID:        uuid.New(),
		FirstName: "Alex",
		LastName:  "Pilot",
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password:  "not-a-real-hash",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedAircraft(t *testing.T, method enum.TISMethod, ttis decimal.Decimal) *entity.Aircraft {
	t.Helper()

	aircraft := &entity.Aircraft{
		ID:                 uuid.New(),
		Registration:       "ZK-" + uuid.NewString()[:4],
		Model:              "Cessna 172",
		TISMethod:          method,
		TISFactor:          decimal.NewFromInt(1),
		TotalTimeInService: ttis,
		HourlyRate:         16735,
	}
	require.NoError(t, e.db.Create(aircraft).Error)
	return aircraft
}

func (e *testEnv) seedBooking(t *testing.T, memberID uuid.UUID) *entity.Booking {
	t.Helper()

	now := time.Now()
	booking := &entity.Booking{
		ID:       uuid.New(),
		MemberID: memberID,
		Type:     enum.BookingTypeFlight,
		StartsAt: now.Add(-2 * time.Hour),
		EndsAt:   now.Add(-30 * time.Minute),
	}
	require.NoError(t, e.db.Create(booking).Error)
	return booking
}

func (e *testEnv) reloadInvoice(t *testing.T, id uuid.UUID) *entity.Invoice {
	t.Helper()

	var invoice entity.Invoice
	require.NoError(t, e.db.First(&invoice, "id = ?", id).Error)
	return &invoice
}

func (e *testEnv) reloadBooking(t *testing.T, id uuid.UUID) *entity.Booking {
	t.Helper()

	var booking entity.Booking
	require.NoError(t, e.db.First(&booking, "id = ?", id).Error)
	return &booking
}

func (e *testEnv) reloadAircraft(t *testing.T, id uuid.UUID) *entity.Aircraft {
	t.Helper()

	var aircraft entity.Aircraft
	require.NoError(t, e.db.First(&aircraft, "id = ?", id).Error)
	return &aircraft
}

func (e *testEnv) ledgerEntriesFor(t *testing.T, userID uuid.UUID) []entity.LedgerEntry {
	t.Helper()

	var entries []entity.LedgerEntry
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("created_at").Find(&entries).Error)
	return entries
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decp(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// flightLineItems is a typical auto-generated time charge set
func flightLineItems() []service.InvoiceItemInput {
	return []service.InvoiceItemInput{
		{
			Description: "Aircraft hire 1.3h",
			Quantity:    dec(1.3),
			UnitPrice:   16735,
		},
	}
}
