package repository

import (
	"context"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingFilterParams filters booking listings
type BookingFilterParams struct {
	Pagination *PaginationParams
	MemberID   *uuid.UUID
	AircraftID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	CheckedIn  *bool
}

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// GetForUpdate loads the booking under a row lock; the check-in
	// orchestrator holds it for the whole approval transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	List(ctx context.Context, params *BookingFilterParams) ([]entity.Booking, int64, error)
	// ApplyCheckin writes the flight-log fields and stamps the approval in
	// one update.
	ApplyCheckin(ctx context.Context, id uuid.UUID, update BookingCheckinUpdate) error
	// UpdateEndReadings overwrites only the supplied end readings; nil fields
	// are left untouched. Used exclusively by the correction engine.
	UpdateEndReadings(ctx context.Context, id uuid.UUID, hobbsEnd, tachEnd, airswitchEnd *decimal.Decimal) error
}

// AircraftRepository defines the interface for aircraft persistence
type AircraftRepository interface {
	Create(ctx context.Context, aircraft *entity.Aircraft) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Aircraft, error)
	List(ctx context.Context, params *PaginationParams) ([]entity.Aircraft, int64, error)
	// AdjustTimeInService applies a signed relative delta to the cumulative
	// counter. The counter is never overwritten with an absolute value, so
	// concurrent flights adding time are never clobbered.
	AdjustTimeInService(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// TrainingRecordRepository defines the interface for training records
type TrainingRecordRepository interface {
	// Upsert creates the booking's training record or updates the existing
	// one; a booking never accumulates duplicates.
	Upsert(ctx context.Context, record *entity.TrainingRecord) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.TrainingRecord, error)
}
