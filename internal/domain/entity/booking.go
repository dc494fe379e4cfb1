package entity

import (
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking represents a reservation on the schedule. The check-in fields
// (actual aircraft/instructor, meter end readings, billing hours) are written
// once at approval and are immutable afterwards except through the correction
// path.
type Booking struct {
	ID       uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	MemberID uuid.UUID        `gorm:"type:uuid;not null;index" json:"member_id"`
	Type     enum.BookingType `gorm:"default:0" json:"type"`
	StartsAt time.Time        `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time        `gorm:"not null" json:"ends_at"`

	ScheduledAircraftID   *uuid.UUID `gorm:"type:uuid" json:"scheduled_aircraft_id,omitempty"`
	ScheduledInstructorID *uuid.UUID `gorm:"type:uuid" json:"scheduled_instructor_id,omitempty"`
	ActualAircraftID      *uuid.UUID `gorm:"type:uuid" json:"actual_aircraft_id,omitempty"`
	ActualInstructorID    *uuid.UUID `gorm:"type:uuid" json:"actual_instructor_id,omitempty"`
	FlightType            string     `gorm:"size:50" json:"flight_type"`

	HobbsStart     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"hobbs_start,omitempty"`
	HobbsEnd       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"hobbs_end,omitempty"`
	TachStart      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"tach_start,omitempty"`
	TachEnd        *decimal.Decimal `gorm:"type:numeric(10,2)" json:"tach_end,omitempty"`
	AirswitchStart *decimal.Decimal `gorm:"type:numeric(10,2)" json:"airswitch_start,omitempty"`
	AirswitchEnd   *decimal.Decimal `gorm:"type:numeric(10,2)" json:"airswitch_end,omitempty"`

	BillingBasis string           `gorm:"size:20" json:"billing_basis"`
	BillingHours *decimal.Decimal `gorm:"type:numeric(10,2)" json:"billing_hours,omitempty"`
	DualTime     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"dual_time,omitempty"`
	SoloTime     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"solo_time,omitempty"`

	CheckinApprovedAt *time.Time `json:"checkin_approved_at,omitempty"`
	CheckinApprovedBy *uuid.UUID `gorm:"type:uuid" json:"checkin_approved_by,omitempty"`
	CheckinInvoiceID  *uuid.UUID `gorm:"type:uuid;index" json:"checkin_invoice_id,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Member          User      `gorm:"foreignKey:MemberID" json:"-"`
	ActualAircraft  *Aircraft `gorm:"foreignKey:ActualAircraftID" json:"actual_aircraft,omitempty"`
	CheckinInvoice  *Invoice  `gorm:"foreignKey:CheckinInvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new booking
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsCheckinApproved reports whether the post-flight check-in has been
// approved. Approval is one-way; once set the flight-log fields are locked.
func (b *Booking) IsCheckinApproved() bool {
	return b.CheckinApprovedAt != nil
}

// IsCancelled reports whether the booking was cancelled
func (b *Booking) IsCancelled() bool {
	return b.CancelledAt != nil
}
