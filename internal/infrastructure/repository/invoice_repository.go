package repository

import (
	"context"
	"errors"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := forUpdate(conn(ctx, r.db)).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Preload("Items").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).First(&invoice, "booking_id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		query = query.Where("reference LIKE ?", "%"+params.Search+"%")
	}
	if params.StartDate != nil {
		query = query.Where("issue_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("issue_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset(params.Pagination)).Limit(perPage(params.Pagination)).
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totals domainRepo.InvoiceTotalsUpdate) error {
	return conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sub_total":   totals.SubTotal,
			"tax_total":   totals.TaxTotal,
			"total":       totals.Total,
			"balance_due": totals.BalanceDue,
		}).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, issueDate, paidDate *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if issueDate != nil {
		updates["issue_date"] = *issueDate
	}
	if paidDate != nil {
		updates["paid_date"] = *paidDate
	}
	return conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ApplyPayment adds the amount to total_paid only while the remaining balance
// covers it. The guard in the WHERE clause makes the update safe even when
// the engine cannot lock the row for the caller.
func (r *invoiceRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ? AND total - total_paid >= ?", id, amount).
		Updates(map[string]interface{}{
			"total_paid":  gorm.Expr("total_paid + ?", amount),
			"balance_due": gorm.Expr("total - (total_paid + ?)", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type invoiceItemRepository struct {
	db *gorm.DB
}

// NewInvoiceItemRepository creates a new invoice item repository
func NewInvoiceItemRepository(db *gorm.DB) domainRepo.InvoiceItemRepository {
	return &invoiceItemRepository{db: db}
}

func (r *invoiceItemRepository) CreateBatch(ctx context.Context, items []entity.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&items).Error
}

func (r *invoiceItemRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	var items []entity.InvoiceItem
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *invoiceItemRepository) SoftDeleteByOrigin(ctx context.Context, invoiceID uuid.UUID, origin enum.ItemOrigin) error {
	return conn(ctx, r.db).
		Where("invoice_id = ? AND origin = ?", invoiceID, origin).
		Delete(&entity.InvoiceItem{}).Error
}
