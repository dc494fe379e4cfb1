package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrainingRecord holds the instructor's debrief and assessment for a flight.
// At most one record exists per booking; re-approvals upsert rather than
// duplicate.
type TrainingRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BookingID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	MemberID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"member_id"`
	InstructorID *uuid.UUID `gorm:"type:uuid" json:"instructor_id,omitempty"`
	Debrief      string     `gorm:"type:text" json:"debrief"`
	Assessment   string     `gorm:"type:text" json:"assessment"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relationships
	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new training record
func (r *TrainingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TrainingRecord model
func (TrainingRecord) TableName() string {
	return "training_records"
}
