package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckinService orchestrates post-flight check-in approval: it turns a
// completed flight's measurements into a pending invoice and locks the
// booking's flight-log fields, all inside one transaction. Approval is
// one-way; a second attempt is rejected, and a retry after a partial earlier
// attempt (invoice created, booking not yet locked) completes only the
// booking-lock step so the member is never billed twice.
type CheckinService struct {
	tx           repository.TxManager
	bookingRepo  repository.BookingRepository
	aircraftRepo repository.AircraftRepository
	trainingRepo repository.TrainingRecordRepository
	invoiceRepo  repository.InvoiceRepository
	invoices     *InvoiceService
}

// NewCheckinService creates a new check-in service
func NewCheckinService(
	tx repository.TxManager,
	bookingRepo repository.BookingRepository,
	aircraftRepo repository.AircraftRepository,
	trainingRepo repository.TrainingRecordRepository,
	invoiceRepo repository.InvoiceRepository,
	invoices *InvoiceService,
) *CheckinService {
	return &CheckinService{
		tx:           tx,
		bookingRepo:  bookingRepo,
		aircraftRepo: aircraftRepo,
		trainingRepo: trainingRepo,
		invoiceRepo:  invoiceRepo,
		invoices:     invoices,
	}
}

// CheckinInput carries the flight-log fields recorded at check-in
type CheckinInput struct {
	ActualAircraftID   uuid.UUID
	ActualInstructorID *uuid.UUID
	FlightType         string

	HobbsStart     *decimal.Decimal
	HobbsEnd       *decimal.Decimal
	TachStart      *decimal.Decimal
	TachEnd        *decimal.Decimal
	AirswitchStart *decimal.Decimal
	AirswitchEnd   *decimal.Decimal

	BillingBasis string
	BillingHours *decimal.Decimal
	DualTime     *decimal.Decimal
	SoloTime     *decimal.Decimal

	Debrief    string
	Assessment string
}

// ApproveCheckinInput represents the approve check-in input
type ApproveCheckinInput struct {
	CheckinInput

	TaxRate   *decimal.Decimal
	DueDate   *time.Time
	Reference string
	Notes     string
	Items     []InvoiceItemInput
}

// ApproveCheckin approves a booking's post-flight check-in. Depending on the
// booking's invoice linkage it creates a pending invoice, completes a prior
// partial attempt, or promotes a saved draft — then locks the flight-log
// fields and advances the aircraft's time in service.
func (s *CheckinService) ApproveCheckin(ctx context.Context, actorID uuid.UUID, bookingID uuid.UUID, input *ApproveCheckinInput) (uuid.UUID, error) {
	if input.ActualAircraftID == uuid.Nil {
		return uuid.Nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "actual_aircraft_id", Message: "required"},
		})
	}

	var invoiceID uuid.UUID
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		booking, err := s.loadApprovableBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		// No linked invoice: bill and lock together
		if booking.CheckinInvoiceID == nil {
			items := make([]InvoiceItemInput, len(input.Items))
			copy(items, input.Items)
			for i := range items {
				items[i].Origin = enum.ItemOriginAutoTimeCharge
			}
			created, err := s.invoices.CreateInvoice(ctx, actorID, &CreateInvoiceInput{
				UserID:    booking.MemberID,
				BookingID: &booking.ID,
				Status:    enum.InvoiceStatusPending,
				TaxRate:   input.TaxRate,
				DueDate:   input.DueDate,
				Reference: input.Reference,
				Notes:     input.Notes,
				Items:     items,
			})
			if err != nil {
				return fmt.Errorf("create check-in invoice: %w", err)
			}
			invoiceID = created.Invoice.ID
			return s.lockBooking(ctx, actorID, booking, invoiceID, &input.CheckinInput)
		}

		invoice, err := s.invoiceRepo.GetByID(ctx, *booking.CheckinInvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Linked invoice")
		}
		invoiceID = invoice.ID

		switch invoice.Status {
		case enum.InvoiceStatusPending:
			// Retry path: the invoice step of an earlier attempt succeeded
			// but the booking lock did not. Skip all invoice mutation.
			return s.lockBooking(ctx, actorID, booking, invoice.ID, &input.CheckinInput)

		case enum.InvoiceStatusDraft:
			if err := s.invoices.ReplaceAutoGeneratedItems(ctx, actorID, invoice.ID, input.Items); err != nil {
				return fmt.Errorf("replace auto-generated items: %w", err)
			}
			if _, err := s.invoices.UpdateStatus(ctx, actorID, invoice.ID, enum.InvoiceStatusPending); err != nil {
				return fmt.Errorf("approve draft invoice: %w", err)
			}
			return s.lockBooking(ctx, actorID, booking, invoice.ID, &input.CheckinInput)

		default:
			return apperror.NewStateConflictError(
				fmt.Sprintf("Check-in cannot be approved through an invoice in %s status", invoice.Status))
		}
	})
	if err != nil {
		return uuid.Nil, err
	}
	return invoiceID, nil
}

// FinalizeCheckin completes only the booking-lock step against an invoice
// the caller already holds from a prior partial approval. No items are
// accepted; the invoice is never mutated.
func (s *CheckinService) FinalizeCheckin(ctx context.Context, actorID uuid.UUID, bookingID, invoiceID uuid.UUID, input *CheckinInput) error {
	if input.ActualAircraftID == uuid.Nil {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "actual_aircraft_id", Message: "required"},
		})
	}

	return s.tx.Do(ctx, func(ctx context.Context) error {
		booking, err := s.loadApprovableBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.CheckinInvoiceID != nil && *booking.CheckinInvoiceID != invoiceID {
			return apperror.NewStateConflictError("Booking is linked to a different invoice")
		}

		invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status != enum.InvoiceStatusPending {
			return apperror.NewStateConflictError(
				fmt.Sprintf("Check-in cannot be finalized through an invoice in %s status", invoice.Status))
		}

		return s.lockBooking(ctx, actorID, booking, invoiceID, input)
	})
}

// loadApprovableBooking locks the booking row and applies the approval
// preconditions shared by Approve and Finalize.
func (s *CheckinService) loadApprovableBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NewNotFoundError("Booking")
	}
	if booking.Type != enum.BookingTypeFlight {
		return nil, apperror.NewStateConflictError("Only flight bookings can be checked in")
	}
	if booking.IsCancelled() {
		return nil, apperror.NewStateConflictError("Cannot check in a cancelled booking")
	}
	if booking.IsCheckinApproved() {
		return nil, apperror.NewStateConflictError("Check-in has already been approved")
	}
	return booking, nil
}

// lockBooking writes the flight-log fields, stamps the approval, advances
// the aircraft's time-in-service counter and upserts the training record.
// Runs inside the orchestrating transaction.
func (s *CheckinService) lockBooking(ctx context.Context, actorID uuid.UUID, booking *entity.Booking, invoiceID uuid.UUID, input *CheckinInput) error {
	aircraft, err := s.aircraftRepo.GetByID(ctx, input.ActualAircraftID)
	if err != nil {
		return err
	}
	if aircraft == nil {
		return apperror.NewNotFoundError("Aircraft")
	}

	update := repository.BookingCheckinUpdate{
		ActualAircraftID:   &input.ActualAircraftID,
		ActualInstructorID: input.ActualInstructorID,
		FlightType:         input.FlightType,
		HobbsStart:         input.HobbsStart,
		HobbsEnd:           input.HobbsEnd,
		TachStart:          input.TachStart,
		TachEnd:            input.TachEnd,
		AirswitchStart:     input.AirswitchStart,
		AirswitchEnd:       input.AirswitchEnd,
		BillingBasis:       input.BillingBasis,
		BillingHours:       input.BillingHours,
		DualTime:           input.DualTime,
		SoloTime:           input.SoloTime,
		InvoiceID:          invoiceID,
		ApprovedAt:         time.Now(),
		ApprovedBy:         actorID,
	}
	if err := s.bookingRepo.ApplyCheckin(ctx, booking.ID, update); err != nil {
		return fmt.Errorf("lock booking flight log: %w", err)
	}

	elapsed := aircraft.ElapsedTime(
		input.HobbsStart, input.HobbsEnd,
		input.TachStart, input.TachEnd,
		input.AirswitchStart, input.AirswitchEnd,
	)
	if elapsed.Sign() < 0 {
		return apperror.NewIntegrityError("Meter end reading is before the start reading")
	}
	if elapsed.Sign() > 0 {
		if err := s.aircraftRepo.AdjustTimeInService(ctx, aircraft.ID, elapsed); err != nil {
			return fmt.Errorf("advance aircraft time in service: %w", err)
		}
	}

	if input.Debrief != "" || input.Assessment != "" {
		record := &entity.TrainingRecord{
			BookingID:    booking.ID,
			MemberID:     booking.MemberID,
			InstructorID: input.ActualInstructorID,
			Debrief:      input.Debrief,
			Assessment:   input.Assessment,
		}
		if err := s.trainingRepo.Upsert(ctx, record); err != nil {
			return fmt.Errorf("upsert training record: %w", err)
		}
	}
	return nil
}
