package repository

import (
	"context"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ledgerEntryRepository struct {
	db *gorm.DB
}

// NewLedgerEntryRepository creates a new ledger entry repository. The ledger
// is append-only; no update or delete methods exist.
func NewLedgerEntryRepository(db *gorm.DB) domainRepo.LedgerEntryRepository {
	return &ledgerEntryRepository{db: db}
}

func (r *ledgerEntryRepository) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *ledgerEntryRepository) ListByUser(ctx context.Context, userID uuid.UUID, params *domainRepo.PaginationParams) ([]entity.LedgerEntry, int64, error) {
	var entries []entity.LedgerEntry
	var total int64

	query := conn(ctx, r.db).Model(&entity.LedgerEntry{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset(params)).Limit(perPage(params)).
		Order("completed_at DESC").
		Find(&entries).Error

	return entries, total, err
}

func (r *ledgerEntryRepository) HasApprovalDebit(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	var count int64
	// JSONQuery compiles to jsonb extraction on postgres and json_extract on
	// the sqlite test driver. Exact matches on the event marker and invoice id
	// keep payment debits for the same invoice out of the count.
	err := conn(ctx, r.db).Model(&entity.LedgerEntry{}).
		Where("type = ?", enum.LedgerEntryDebit).
		Where(datatypes.JSONQuery("metadata").Equals(entity.LedgerEventInvoiceApproved, entity.LedgerMetaEvent)).
		Where(datatypes.JSONQuery("metadata").Equals(invoiceID.String(), entity.LedgerMetaInvoiceID)).
		Count(&count).Error
	return count > 0, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return conn(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}
