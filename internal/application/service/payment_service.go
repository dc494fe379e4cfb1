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
	"github.com/google/uuid"
)

// PaymentService records payments against invoices. The invoice row is
// locked for the duration of the operation so concurrent payment attempts
// serialize; the ledger entry, payment row, totals update and status flip
// all commit or roll back together.
type PaymentService struct {
	tx          repository.TxManager
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	ledgerRepo  repository.LedgerEntryRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	tx repository.TxManager,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.LedgerEntryRepository,
) *PaymentService {
	return &PaymentService{
		tx:          tx,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// RecordPaymentInput represents the record payment input
type RecordPaymentInput struct {
	Amount    int64 // cents
	Method    string
	Reference string
	Notes     string
	PaidAt    *time.Time
}

// RecordPaymentResult is returned by RecordPayment
type RecordPaymentResult struct {
	Payment       *entity.Payment
	LedgerEntryID uuid.UUID
	NewTotalPaid  int64
	NewBalanceDue int64
	NewStatus     enum.InvoiceStatus
}

// RecordPayment atomically applies a payment to an invoice. Overpayment is a
// hard error carrying the current balance, never a silent clamp.
func (s *PaymentService) RecordPayment(ctx context.Context, actorID uuid.UUID, invoiceID uuid.UUID, input *RecordPaymentInput) (*RecordPaymentResult, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "amount", Message: "must be greater than zero"},
		})
	}
	if input.Method == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "method", Message: "required"},
		})
	}

	var result RecordPaymentResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status.IsTerminal() {
			return apperror.NewStateConflictError(
				fmt.Sprintf("Cannot record a payment against a %s invoice", invoice.Status))
		}

		balance := invoice.Total - invoice.TotalPaid
		if balance <= 0 {
			return apperror.NewStateConflictError("Invoice is already paid in full")
		}
		if input.Amount > balance {
			return apperror.NewStateConflictError(
				fmt.Sprintf("Payment of %.2f exceeds the outstanding balance of %.2f",
					float64(input.Amount)/100, float64(balance)/100))
		}

		paidAt := time.Now()
		if input.PaidAt != nil {
			paidAt = *input.PaidAt
		}

		entry := &entity.LedgerEntry{
			UserID:      invoice.UserID,
			Type:        enum.LedgerEntryDebit,
			Amount:      input.Amount,
			Description: fmt.Sprintf("Payment received (%s)", input.Method),
			Metadata:    repository.NewLedgerMetadata(entity.LedgerEventPaymentReceived, &invoice.ID, invoice.BookingID, input.Method),
			CompletedAt: paidAt,
			CreatedBy:   actorID,
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create payment ledger entry: %w", err)
		}

		payment := &entity.Payment{
			InvoiceID:     invoice.ID,
			LedgerEntryID: entry.ID,
			Amount:        input.Amount,
			Method:        input.Method,
			Reference:     input.Reference,
			Notes:         input.Notes,
			PaidAt:        paidAt,
			CreatedBy:     actorID,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		// Guarded update: the WHERE clause re-checks the balance so a racing
		// payment that slipped past the row lock can never overdraw
		applied, err := s.invoiceRepo.ApplyPayment(ctx, invoice.ID, input.Amount)
		if err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}
		if !applied {
			return apperror.NewStateConflictError(
				fmt.Sprintf("Payment of %.2f exceeds the outstanding balance", float64(input.Amount)/100))
		}

		newPaid := invoice.TotalPaid + input.Amount
		newBalance := money.BalanceDue(invoice.Total, newPaid)
		newStatus := invoice.Status
		if newBalance == 0 {
			if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusPaid, nil, &paidAt); err != nil {
				return fmt.Errorf("mark invoice paid: %w", err)
			}
			newStatus = enum.InvoiceStatusPaid
		}

		result = RecordPaymentResult{
			Payment:       payment,
			LedgerEntryID: entry.ID,
			NewTotalPaid:  newPaid,
			NewBalanceDue: newBalance,
			NewStatus:     newStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPayments lists the payments recorded against an invoice
func (s *PaymentService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}
