package request

import (
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlightLogRequest carries the flight-log fields recorded at check-in.
// Meter readings are decimal hours as shown on the instrument.
type FlightLogRequest struct {
	ActualAircraftID   uuid.UUID  `json:"actual_aircraft_id" binding:"required"`
	ActualInstructorID *uuid.UUID `json:"actual_instructor_id"`
	FlightType         string     `json:"flight_type" binding:"omitempty,max=100"`

	HobbsStart     *float64 `json:"hobbs_start" binding:"omitempty,min=0"`
	HobbsEnd       *float64 `json:"hobbs_end" binding:"omitempty,min=0"`
	TachStart      *float64 `json:"tach_start" binding:"omitempty,min=0"`
	TachEnd        *float64 `json:"tach_end" binding:"omitempty,min=0"`
	AirswitchStart *float64 `json:"airswitch_start" binding:"omitempty,min=0"`
	AirswitchEnd   *float64 `json:"airswitch_end" binding:"omitempty,min=0"`

	BillingBasis string   `json:"billing_basis" binding:"omitempty,oneof=hobbs tach airswitch manual"`
	BillingHours *float64 `json:"billing_hours" binding:"omitempty,min=0"`
	DualTime     *float64 `json:"dual_time" binding:"omitempty,min=0"`
	SoloTime     *float64 `json:"solo_time" binding:"omitempty,min=0"`

	Debrief    string `json:"debrief"`
	Assessment string `json:"assessment"`
}

func (r *FlightLogRequest) toCheckinInput() service.CheckinInput {
	return service.CheckinInput{
		ActualAircraftID:   r.ActualAircraftID,
		ActualInstructorID: r.ActualInstructorID,
		FlightType:         r.FlightType,
		HobbsStart:         optionalDecimal(r.HobbsStart),
		HobbsEnd:           optionalDecimal(r.HobbsEnd),
		TachStart:          optionalDecimal(r.TachStart),
		TachEnd:            optionalDecimal(r.TachEnd),
		AirswitchStart:     optionalDecimal(r.AirswitchStart),
		AirswitchEnd:       optionalDecimal(r.AirswitchEnd),
		BillingBasis:       r.BillingBasis,
		BillingHours:       optionalDecimal(r.BillingHours),
		DualTime:           optionalDecimal(r.DualTime),
		SoloTime:           optionalDecimal(r.SoloTime),
		Debrief:            r.Debrief,
		Assessment:         r.Assessment,
	}
}

// ApproveCheckinRequest represents a check-in approval request
type ApproveCheckinRequest struct {
	FlightLogRequest

	TaxRate   *float64             `json:"tax_rate" binding:"omitempty,min=0,max=1"`
	DueDate   *time.Time           `json:"due_date"`
	Reference string               `json:"reference" binding:"omitempty,max=100"`
	Notes     string               `json:"notes"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToServiceInput converts the request into the check-in service input
func (r *ApproveCheckinRequest) ToServiceInput() *service.ApproveCheckinInput {
	return &service.ApproveCheckinInput{
		CheckinInput: r.toCheckinInput(),
		TaxRate:      optionalRate(r.TaxRate),
		DueDate:      r.DueDate,
		Reference:    r.Reference,
		Notes:        r.Notes,
		Items:        toItemInputs(r.Items),
	}
}

// FinalizeCheckinRequest completes the booking-lock step of a prior partial
// approval against the invoice it already produced
type FinalizeCheckinRequest struct {
	FlightLogRequest

	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
}

// ToServiceInput converts the request into the check-in service input
func (r *FinalizeCheckinRequest) ToServiceInput() *service.CheckinInput {
	input := r.toCheckinInput()
	return &input
}

// CorrectCheckinRequest represents a meter-reading correction request
type CorrectCheckinRequest struct {
	HobbsEnd     *float64 `json:"hobbs_end" binding:"omitempty,min=0"`
	TachEnd      *float64 `json:"tach_end" binding:"omitempty,min=0"`
	AirswitchEnd *float64 `json:"airswitch_end" binding:"omitempty,min=0"`
	Reason       string   `json:"reason" binding:"required,min=3,max=1000"`
}

// ToServiceInput converts the request into the correction service input
func (r *CorrectCheckinRequest) ToServiceInput() *service.CorrectCheckinInput {
	return &service.CorrectCheckinInput{
		HobbsEnd:     optionalDecimal(r.HobbsEnd),
		TachEnd:      optionalDecimal(r.TachEnd),
		AirswitchEnd: optionalDecimal(r.AirswitchEnd),
		Reason:       r.Reason,
	}
}

func optionalDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
