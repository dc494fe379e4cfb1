package repository

import (
	"context"
	"errors"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return conn(ctx, r.db).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := conn(ctx, r.db).
		Preload("ActualAircraft").
		First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := forUpdate(conn(ctx, r.db)).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (r *bookingRepository) List(ctx context.Context, params *domainRepo.BookingFilterParams) ([]entity.Booking, int64, error) {
	var bookings []entity.Booking
	var total int64

	query := conn(ctx, r.db).Model(&entity.Booking{})

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.AircraftID != nil {
		query = query.Where("scheduled_aircraft_id = ? OR actual_aircraft_id = ?", *params.AircraftID, *params.AircraftID)
	}
	if params.StartDate != nil {
		query = query.Where("starts_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("starts_at <= ?", *params.EndDate)
	}
	if params.CheckedIn != nil {
		if *params.CheckedIn {
			query = query.Where("checkin_approved_at IS NOT NULL")
		} else {
			query = query.Where("checkin_approved_at IS NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset(params.Pagination)).Limit(perPage(params.Pagination)).
		Order("starts_at DESC").
		Find(&bookings).Error

	return bookings, total, err
}

func (r *bookingRepository) ApplyCheckin(ctx context.Context, id uuid.UUID, update domainRepo.BookingCheckinUpdate) error {
	updates := map[string]interface{}{
		"actual_aircraft_id":   update.ActualAircraftID,
		"actual_instructor_id": update.ActualInstructorID,
		"flight_type":          update.FlightType,
		"hobbs_start":          update.HobbsStart,
		"hobbs_end":            update.HobbsEnd,
		"tach_start":           update.TachStart,
		"tach_end":             update.TachEnd,
		"airswitch_start":      update.AirswitchStart,
		"airswitch_end":        update.AirswitchEnd,
		"billing_basis":        update.BillingBasis,
		"billing_hours":        update.BillingHours,
		"dual_time":            update.DualTime,
		"solo_time":            update.SoloTime,
		"checkin_invoice_id":   update.InvoiceID,
		"checkin_approved_at":  update.ApprovedAt,
		"checkin_approved_by":  update.ApprovedBy,
	}
	return conn(ctx, r.db).Model(&entity.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *bookingRepository) UpdateEndReadings(ctx context.Context, id uuid.UUID, hobbsEnd, tachEnd, airswitchEnd *decimal.Decimal) error {
	updates := map[string]interface{}{}
	if hobbsEnd != nil {
		updates["hobbs_end"] = *hobbsEnd
	}
	if tachEnd != nil {
		updates["tach_end"] = *tachEnd
	}
	if airswitchEnd != nil {
		updates["airswitch_end"] = *airswitchEnd
	}
	if len(updates) == 0 {
		return nil
	}
	return conn(ctx, r.db).Model(&entity.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type aircraftRepository struct {
	db *gorm.DB
}

// NewAircraftRepository creates a new aircraft repository
func NewAircraftRepository(db *gorm.DB) domainRepo.AircraftRepository {
	return &aircraftRepository{db: db}
}

func (r *aircraftRepository) Create(ctx context.Context, aircraft *entity.Aircraft) error {
	return conn(ctx, r.db).Create(aircraft).Error
}

func (r *aircraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Aircraft, error) {
	var aircraft entity.Aircraft
	err := conn(ctx, r.db).First(&aircraft, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &aircraft, err
}

func (r *aircraftRepository) List(ctx context.Context, params *domainRepo.PaginationParams) ([]entity.Aircraft, int64, error) {
	var fleet []entity.Aircraft
	var total int64

	query := conn(ctx, r.db).Model(&entity.Aircraft{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(offset(params)).Limit(perPage(params)).
		Order("registration ASC").
		Find(&fleet).Error

	return fleet, total, err
}

// AdjustTimeInService applies a relative delta so that corrections and
// concurrent flight check-ins compose instead of overwriting each other.
func (r *aircraftRepository) AdjustTimeInService(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return conn(ctx, r.db).Model(&entity.Aircraft{}).
		Where("id = ?", id).
		Update("total_time_in_service", gorm.Expr("total_time_in_service + ?", delta)).Error
}

type trainingRecordRepository struct {
	db *gorm.DB
}

// NewTrainingRecordRepository creates a new training record repository
func NewTrainingRecordRepository(db *gorm.DB) domainRepo.TrainingRecordRepository {
	return &trainingRecordRepository{db: db}
}

func (r *trainingRecordRepository) Upsert(ctx context.Context, record *entity.TrainingRecord) error {
	db := conn(ctx, r.db)

	var existing entity.TrainingRecord
	err := db.First(&existing, "booking_id = ?", record.BookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(record).Error
	}
	if err != nil {
		return err
	}

	return db.Model(&existing).Updates(map[string]interface{}{
		"instructor_id": record.InstructorID,
		"debrief":       record.Debrief,
		"assessment":    record.Assessment,
	}).Error
}

func (r *trainingRecordRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.TrainingRecord, error) {
	var record entity.TrainingRecord
	err := conn(ctx, r.db).First(&record, "booking_id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}
