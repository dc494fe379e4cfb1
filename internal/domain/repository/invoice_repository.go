package repository

import (
	"context"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceFilterParams filters invoice listings
type InvoiceFilterParams struct {
	Pagination *PaginationParams
	UserID     *uuid.UUID
	Status     *enum.InvoiceStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
}

// PaginationParams mirrors pagination.PaginationParams without importing it
// into the domain layer
type PaginationParams struct {
	Page    int
	PerPage int
}

// InvoiceTotalsUpdate carries the recomputed invoice-level monetary fields
type InvoiceTotalsUpdate struct {
	SubTotal   int64
	TaxTotal   int64
	Total      int64
	BalanceDue int64
}

// InvoiceRepository defines the interface for invoice persistence. All
// mutating methods join the transaction carried by ctx when one is active.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetForUpdate loads the invoice under a row lock so concurrent writers
	// against the same invoice serialize for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, totals InvoiceTotalsUpdate) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, issueDate, paidDate *time.Time) error
	// ApplyPayment adds amount to total_paid only while the remaining balance
	// covers it, returning false when the guard fails (overpayment race).
	ApplyPayment(ctx context.Context, id uuid.UUID, amount int64) (bool, error)
}

// InvoiceItemRepository defines the interface for invoice line persistence
type InvoiceItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.InvoiceItem) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error)
	// SoftDeleteByOrigin soft-deletes the invoice's items with the given
	// origin, preserving everything else (manual lines in particular).
	SoftDeleteByOrigin(ctx context.Context, invoiceID uuid.UUID, origin enum.ItemOrigin) error
}

// LedgerEntryRepository defines the interface for the append-only ledger
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, params *PaginationParams) ([]entity.LedgerEntry, int64, error)
	// HasApprovalDebit reports whether the invoice-approved debit entry for
	// this invoice already exists, used to keep approval idempotent. Matches
	// the entry's event marker exactly; payment debits against the same
	// invoice never count.
	HasApprovalDebit(ctx context.Context, invoiceID uuid.UUID) (bool, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
}

// NewLedgerMetadata builds the structured metadata stored on a ledger entry.
// The event marker identifies what kind of billing event the entry records.
func NewLedgerMetadata(event string, invoiceID, bookingID *uuid.UUID, paymentMethod string) datatypes.JSONMap {
	meta := datatypes.JSONMap{entity.LedgerMetaEvent: event}
	if invoiceID != nil {
		meta[entity.LedgerMetaInvoiceID] = invoiceID.String()
	}
	if bookingID != nil {
		meta[entity.LedgerMetaBookingID] = bookingID.String()
	}
	if paymentMethod != "" {
		meta[entity.LedgerMetaPaymentMethod] = paymentMethod
	}
	return meta
}

// BookingCheckinUpdate carries the flight-log fields written when a check-in
// is approved. Once applied they are immutable outside the correction path.
type BookingCheckinUpdate struct {
	ActualAircraftID   *uuid.UUID
	ActualInstructorID *uuid.UUID
	FlightType         string
	HobbsStart         *decimal.Decimal
	HobbsEnd           *decimal.Decimal
	TachStart          *decimal.Decimal
	TachEnd            *decimal.Decimal
	AirswitchStart     *decimal.Decimal
	AirswitchEnd       *decimal.Decimal
	BillingBasis       string
	BillingHours       *decimal.Decimal
	DualTime           *decimal.Decimal
	SoloTime           *decimal.Decimal
	InvoiceID          uuid.UUID
	ApprovedAt         time.Time
	ApprovedBy         uuid.UUID
}
