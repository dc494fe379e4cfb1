package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CorrectionService fixes meter-reading errors on approved check-ins. It
// computes the change between the previously applied elapsed time and the
// corrected one, and applies only that signed difference to the aircraft's
// cumulative counter — never an absolute overwrite, so flights that have
// advanced the counter in the meantime are preserved. Invoice totals are
// deliberately untouched.
type CorrectionService struct {
	tx           repository.TxManager
	bookingRepo  repository.BookingRepository
	aircraftRepo repository.AircraftRepository
	ledgerRepo   repository.LedgerEntryRepository
}

// NewCorrectionService creates a new correction service
func NewCorrectionService(
	tx repository.TxManager,
	bookingRepo repository.BookingRepository,
	aircraftRepo repository.AircraftRepository,
	ledgerRepo repository.LedgerEntryRepository,
) *CorrectionService {
	return &CorrectionService{
		tx:           tx,
		bookingRepo:  bookingRepo,
		aircraftRepo: aircraftRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// CorrectCheckinInput represents the correction input. At least one end
// reading must be supplied; unsupplied readings keep their stored values.
type CorrectCheckinInput struct {
	HobbsEnd     *decimal.Decimal
	TachEnd      *decimal.Decimal
	AirswitchEnd *decimal.Decimal
	Reason       string
}

// CorrectCheckinResult is returned by CorrectCheckin
type CorrectCheckinResult struct {
	AppliedDelta          decimal.Decimal
	NewTotalTimeInService decimal.Decimal
}

// CorrectCheckin atomically updates a booking's stored end readings and
// adjusts the aircraft's total time in service by (new delta - old delta).
func (s *CorrectionService) CorrectCheckin(ctx context.Context, actorID uuid.UUID, bookingID uuid.UUID, input *CorrectCheckinInput) (*CorrectCheckinResult, error) {
	if input.HobbsEnd == nil && input.TachEnd == nil && input.AirswitchEnd == nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "end_readings", Message: "at least one corrected end reading is required"},
		})
	}
	if n := utf8.RuneCountInString(input.Reason); n < 3 || n > 1000 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "reason", Message: "must be between 3 and 1000 characters"},
		})
	}

	var result CorrectCheckinResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperror.NewNotFoundError("Booking")
		}
		if !booking.IsCheckinApproved() {
			return apperror.NewStateConflictError("Check-in has not been approved; correct the booking directly")
		}
		if booking.ActualAircraftID == nil {
			return apperror.NewIntegrityError("Booking has no actual aircraft recorded")
		}

		aircraft, err := s.aircraftRepo.GetByID(ctx, *booking.ActualAircraftID)
		if err != nil {
			return err
		}
		if aircraft == nil {
			return apperror.NewNotFoundError("Aircraft")
		}

		oldDelta := aircraft.ElapsedTime(
			booking.HobbsStart, booking.HobbsEnd,
			booking.TachStart, booking.TachEnd,
			booking.AirswitchStart, booking.AirswitchEnd,
		)

		hobbsEnd := pick(input.HobbsEnd, booking.HobbsEnd)
		tachEnd := pick(input.TachEnd, booking.TachEnd)
		airEnd := pick(input.AirswitchEnd, booking.AirswitchEnd)

		if belowStart(booking.HobbsStart, hobbsEnd) ||
			belowStart(booking.TachStart, tachEnd) ||
			belowStart(booking.AirswitchStart, airEnd) {
			return apperror.NewValidationError([]apperror.FieldError{
				{Field: "end_readings", Message: "end reading cannot be below the start reading"},
			})
		}

		newDelta := aircraft.ElapsedTime(
			booking.HobbsStart, hobbsEnd,
			booking.TachStart, tachEnd,
			booking.AirswitchStart, airEnd,
		)

		if err := s.bookingRepo.UpdateEndReadings(ctx, booking.ID, input.HobbsEnd, input.TachEnd, input.AirswitchEnd); err != nil {
			return fmt.Errorf("update end readings: %w", err)
		}

		diff := newDelta.Sub(oldDelta)
		if !diff.IsZero() {
			if err := s.aircraftRepo.AdjustTimeInService(ctx, aircraft.ID, diff); err != nil {
				return fmt.Errorf("adjust aircraft time in service: %w", err)
			}
		}

		meta := repository.NewLedgerMetadata(entity.LedgerEventCheckinCorrected, booking.CheckinInvoiceID, &booking.ID, "")
		meta[entity.LedgerMetaAircraftID] = aircraft.ID.String()
		meta["ttis_delta"] = diff.String()
		entry := &entity.LedgerEntry{
			UserID:      booking.MemberID,
			Type:        enum.LedgerEntryAdjustment,
			Amount:      0,
			Description: "Check-in correction: " + input.Reason,
			Metadata:    meta,
			CompletedAt: time.Now(),
			CreatedBy:   actorID,
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create correction ledger entry: %w", err)
		}

		updated, err := s.aircraftRepo.GetByID(ctx, aircraft.ID)
		if err != nil {
			return err
		}

		result = CorrectCheckinResult{
			AppliedDelta:          diff,
			NewTotalTimeInService: updated.TotalTimeInService,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func pick(corrected, stored *decimal.Decimal) *decimal.Decimal {
	if corrected != nil {
		return corrected
	}
	return stored
}

func belowStart(start, end *decimal.Decimal) bool {
	return start != nil && end != nil && end.LessThan(*start)
}
