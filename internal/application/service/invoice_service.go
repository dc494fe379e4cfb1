package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/flightworks/aeroops-api/pkg/money"
	"github.com/flightworks/aeroops-api/pkg/pagination"
	"github.com/flightworks/aeroops-api/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService is the transactional invoice ledger store and state machine.
// Every public operation runs inside one database transaction; totals are
// always recomputed server-side from the persisted non-deleted items.
type InvoiceService struct {
	tx          repository.TxManager
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.InvoiceItemRepository
	ledgerRepo  repository.LedgerEntryRepository
	userRepo    repository.UserRepository
	bookingRepo repository.BookingRepository
	defaults    BillingDefaults
}

// BillingDefaults carries the school-wide billing configuration applied when
// a request leaves the corresponding field unset.
type BillingDefaults struct {
	TaxRate decimal.Decimal
	DueDays int
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	tx repository.TxManager,
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	ledgerRepo repository.LedgerEntryRepository,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	defaults BillingDefaults,
) *InvoiceService {
	return &InvoiceService{
		tx:          tx,
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		defaults:    defaults,
	}
}

// InvoiceItemInput represents one line of a new invoice
type InvoiceItemInput struct {
	Description string
	Origin      enum.ItemOrigin
	Quantity    decimal.Decimal
	UnitPrice   int64 // cents
	TaxRate     *decimal.Decimal
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	UserID    uuid.UUID
	BookingID *uuid.UUID
	Status    enum.InvoiceStatus
	TaxRate   *decimal.Decimal
	DueDate   *time.Time
	Reference string
	Notes     string
	Items     []InvoiceItemInput
}

// CreateInvoiceResult is returned by CreateInvoice
type CreateInvoiceResult struct {
	Invoice       *entity.Invoice
	LedgerEntryID *uuid.UUID
}

// CreateInvoice atomically creates an invoice with its items, recalculates
// totals and, when pending was requested, drives the draft->pending
// transition. The invoice is always inserted as draft first so the item
// mutation guard permits the initial item inserts.
func (s *InvoiceService) CreateInvoice(ctx context.Context, actorID uuid.UUID, input *CreateInvoiceInput) (*CreateInvoiceResult, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "items", Message: "at least one item is required"},
		})
	}
	if input.Status != enum.InvoiceStatusDraft && input.Status != enum.InvoiceStatusPending {
		return nil, apperror.NewBadRequestError("An invoice can only be created as draft or pending")
	}
	if input.UserID == uuid.Nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "user_id", Message: "required"},
		})
	}
	for _, item := range input.Items {
		if item.Quantity.Sign() <= 0 {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "items", Message: "quantity must be greater than zero"},
			})
		}
	}

	var result CreateInvoiceResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if input.BookingID != nil {
			// The booking row lock serializes concurrent creation attempts for
			// the same booking; the partial unique index on booking_id backstops
			// the check
			booking, err := s.bookingRepo.GetForUpdate(ctx, *input.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return apperror.NewNotFoundError("Booking")
			}
			existing, err := s.invoiceRepo.GetByBookingID(ctx, *input.BookingID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperror.NewStateConflictError("Booking already has an invoice")
			}
		}

		user, err := s.userRepo.GetByID(ctx, input.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NewNotFoundError("Billed member")
		}

		taxRate := s.defaults.TaxRate
		if input.TaxRate != nil {
			taxRate = *input.TaxRate
		}

		dueDate := input.DueDate
		if dueDate == nil && s.defaults.DueDays > 0 {
			d := time.Now().AddDate(0, 0, s.defaults.DueDays)
			dueDate = &d
		}

		invoice := &entity.Invoice{
			InvoiceNumber: utils.GenerateInvoiceNo("INV-"),
			UserID:        input.UserID,
			BookingID:     input.BookingID,
			Status:        enum.InvoiceStatusDraft,
			TaxRate:       taxRate,
			DueDate:       dueDate,
			Reference:     input.Reference,
			Notes:         input.Notes,
			CreatedBy:     actorID,
		}
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		items := buildItems(invoice, input.Items)
		if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("create invoice items: %w", err)
		}

		totals, err := s.recalculateTx(ctx, invoice)
		if err != nil {
			return err
		}
		if totals.Total <= 0 {
			return apperror.NewIntegrityError("Invoice total must be greater than zero")
		}
		invoice.SubTotal = totals.SubTotal
		invoice.TaxTotal = totals.TaxTotal
		invoice.Total = totals.Total
		invoice.BalanceDue = totals.Total

		entry := &entity.LedgerEntry{
			UserID:      invoice.UserID,
			Type:        enum.LedgerEntryAdjustment,
			Amount:      invoice.Total,
			Description: "Invoice created",
			Metadata:    repository.NewLedgerMetadata(entity.LedgerEventInvoiceCreated, &invoice.ID, invoice.BookingID, ""),
			CompletedAt: time.Now(),
			CreatedBy:   actorID,
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}

		if input.Status == enum.InvoiceStatusPending {
			entryID, err := s.transitionToPendingTx(ctx, actorID, invoice)
			if err != nil {
				return err
			}
			result.LedgerEntryID = entryID
		}

		reloaded, err := s.invoiceRepo.GetWithItems(ctx, invoice.ID)
		if err != nil {
			return err
		}
		result.Invoice = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetInvoice retrieves an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// ListLedgerEntries lists a member's ledger entries, newest first
func (s *InvoiceService) ListLedgerEntries(ctx context.Context, userID uuid.UUID, params *repository.PaginationParams) (*pagination.PaginatedResult[entity.LedgerEntry], error) {
	entries, total, err := s.ledgerRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}

// RecalculateTotals recomputes the invoice's monetary fields from its
// non-deleted items. Tolerates an empty item set.
func (s *InvoiceService) RecalculateTotals(ctx context.Context, invoiceID uuid.UUID) (*repository.InvoiceTotalsUpdate, error) {
	var totals repository.InvoiceTotalsUpdate
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		t, err := s.recalculateTx(ctx, invoice)
		if err != nil {
			return err
		}
		totals = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// recalculateTx recomputes and persists totals inside the caller's
// transaction. balance_due is clamped at zero.
func (s *InvoiceService) recalculateTx(ctx context.Context, invoice *entity.Invoice) (*repository.InvoiceTotalsUpdate, error) {
	items, err := s.itemRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]money.LineAmounts, 0, len(items))
	for _, item := range items {
		lines = append(lines, money.LineAmounts{
			Amount:    item.Amount,
			TaxAmount: item.TaxAmount,
		})
	}
	sums := money.SumLines(lines)

	totals := repository.InvoiceTotalsUpdate{
		SubTotal:   sums.SubTotal,
		TaxTotal:   sums.TaxTotal,
		Total:      sums.Total,
		BalanceDue: money.BalanceDue(sums.Total, invoice.TotalPaid),
	}
	if err := s.invoiceRepo.UpdateTotals(ctx, invoice.ID, totals); err != nil {
		return nil, fmt.Errorf("update invoice totals: %w", err)
	}
	return &totals, nil
}

// ReplaceAutoGeneratedItems soft-deletes the invoice's auto-generated time
// charges, inserts the replacement set and recalculates totals. Manually
// added items are preserved. Only valid while the invoice is draft.
func (s *InvoiceService) ReplaceAutoGeneratedItems(ctx context.Context, actorID uuid.UUID, invoiceID uuid.UUID, newItems []InvoiceItemInput) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status != enum.InvoiceStatusDraft {
			return apperror.NewStateConflictError("Invoice items are immutable once the invoice leaves draft")
		}

		if err := s.itemRepo.SoftDeleteByOrigin(ctx, invoiceID, enum.ItemOriginAutoTimeCharge); err != nil {
			return fmt.Errorf("remove auto-generated items: %w", err)
		}

		items := buildItems(invoice, newItems)
		for i := range items {
			items[i].Origin = enum.ItemOriginAutoTimeCharge
		}
		if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("insert replacement items: %w", err)
		}

		if _, err := s.recalculateTx(ctx, invoice); err != nil {
			return err
		}
		return nil
	})
}

// UpdateStatusResult is returned by UpdateStatus
type UpdateStatusResult struct {
	Status        enum.InvoiceStatus
	LedgerEntryID *uuid.UUID
}

// UpdateStatus drives the invoice state machine. Requesting the status the
// invoice already holds is an idempotent no-op; invalid transitions are
// state-conflict errors.
func (s *InvoiceService) UpdateStatus(ctx context.Context, actorID uuid.UUID, invoiceID uuid.UUID, newStatus enum.InvoiceStatus) (*UpdateStatusResult, error) {
	var result UpdateStatusResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}

		// Idempotent: requesting the current status succeeds without
		// creating a duplicate ledger entry
		if invoice.Status == newStatus {
			result.Status = invoice.Status
			return nil
		}

		switch newStatus {
		case enum.InvoiceStatusPending:
			if invoice.Status != enum.InvoiceStatusDraft {
				return apperror.NewStateConflictError(
					fmt.Sprintf("Cannot approve an invoice in %s status", invoice.Status))
			}
			entryID, err := s.transitionToPendingTx(ctx, actorID, invoice)
			if err != nil {
				return err
			}
			result.LedgerEntryID = entryID
			result.Status = enum.InvoiceStatusPending
			return nil

		case enum.InvoiceStatusPaid:
			return apperror.NewStateConflictError("Paid status is set by the payment recorder, not directly")

		case enum.InvoiceStatusCancelled:
			if !invoice.Status.IsActive() {
				return apperror.NewStateConflictError(
					fmt.Sprintf("Cannot cancel an invoice in %s status", invoice.Status))
			}
			if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, enum.InvoiceStatusCancelled, nil, nil); err != nil {
				return err
			}
			result.Status = enum.InvoiceStatusCancelled
			return nil

		case enum.InvoiceStatusRefunded:
			if invoice.Status != enum.InvoiceStatusPaid {
				return apperror.NewStateConflictError("Only a paid invoice can be refunded")
			}
			if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, enum.InvoiceStatusRefunded, nil, nil); err != nil {
				return err
			}
			result.Status = enum.InvoiceStatusRefunded
			return nil

		default:
			return apperror.NewStateConflictError("Invoices cannot move back to draft")
		}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// transitionToPendingTx performs the draft->pending approval inside the
// caller's transaction: stamps the issue date and emits a financial debit
// ledger entry sized to the invoice total at time of transition. A second
// call for the same invoice does not re-debit.
func (s *InvoiceService) transitionToPendingTx(ctx context.Context, actorID uuid.UUID, invoice *entity.Invoice) (*uuid.UUID, error) {
	if invoice.Total <= 0 {
		return nil, apperror.NewIntegrityError("Invoice total must be greater than zero")
	}

	exists, err := s.ledgerRepo.HasApprovalDebit(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	issueDate := now
	if invoice.IssueDate != nil {
		issueDate = *invoice.IssueDate
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusPending, &issueDate, nil); err != nil {
		return nil, fmt.Errorf("transition invoice to pending: %w", err)
	}
	invoice.Status = enum.InvoiceStatusPending

	if exists {
		return nil, nil
	}

	description := "Invoice approved"
	if invoice.Reference != "" {
		description = fmt.Sprintf("Invoice %s approved", invoice.Reference)
	}
	entry := &entity.LedgerEntry{
		UserID:      invoice.UserID,
		Type:        enum.LedgerEntryDebit,
		Amount:      invoice.Total,
		Description: description,
		Metadata:    repository.NewLedgerMetadata(entity.LedgerEventInvoiceApproved, &invoice.ID, invoice.BookingID, ""),
		CompletedAt: now,
		CreatedBy:   actorID,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create approval ledger entry: %w", err)
	}
	return &entry.ID, nil
}

// buildItems derives the persisted monetary fields for each line. A line
// without its own tax rate inherits the invoice's.
func buildItems(invoice *entity.Invoice, inputs []InvoiceItemInput) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		rate := money.ResolveTaxRate(in.TaxRate, &invoice.TaxRate)
		amounts := money.ComputeLine(in.Quantity, in.UnitPrice, rate)
		items = append(items, entity.InvoiceItem{
			InvoiceID:     invoice.ID,
			Description:   in.Description,
			Origin:        in.Origin,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			TaxRate:       in.TaxRate,
			Amount:        amounts.Amount,
			TaxAmount:     amounts.TaxAmount,
			RateInclusive: amounts.RateInclusive,
			LineTotal:     amounts.LineTotal,
		})
	}
	return items
}
