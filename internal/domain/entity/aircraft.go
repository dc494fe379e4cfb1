package entity

import (
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aircraft represents a fleet aircraft. TotalTimeInService is a cumulative
// operating-hours counter; the correction engine only ever adjusts it by a
// signed delta, never by overwriting the absolute value.
type Aircraft struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Registration       string          `gorm:"size:20;unique;not null" json:"registration"`
	Model              string          `gorm:"size:100" json:"model"`
	TISMethod          enum.TISMethod  `gorm:"default:0" json:"tis_method"`
	TISFactor          decimal.Decimal `gorm:"type:numeric(6,4);default:1" json:"tis_factor"`
	TotalTimeInService decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_time_in_service"`
	HourlyRate         int64           `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new aircraft
func (a *Aircraft) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Aircraft model
func (Aircraft) TableName() string {
	return "aircraft"
}

// ElapsedTime computes the time-in-service delta between a start and end
// reading of the meter selected by TISMethod. Returns zero when either
// reading is missing.
func (a *Aircraft) ElapsedTime(hobbsStart, hobbsEnd, tachStart, tachEnd, airStart, airEnd *decimal.Decimal) decimal.Decimal {
	span := func(start, end *decimal.Decimal) decimal.Decimal {
		if start == nil || end == nil {
			return decimal.Zero
		}
		return end.Sub(*start)
	}

	switch a.TISMethod {
	case enum.TISMethodTach:
		return span(tachStart, tachEnd)
	case enum.TISMethodAirswitch:
		return span(airStart, airEnd)
	case enum.TISMethodAirswitchFactored:
		return span(airStart, airEnd).Mul(a.TISFactor).Round(2)
	default:
		return span(hobbsStart, hobbsEnd)
	}
}
