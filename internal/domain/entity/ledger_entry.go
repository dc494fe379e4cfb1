package entity

import (
	"encoding/json"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerEntry is an immutable audit record of a billing event: invoice
// creation, invoice approval, payment received, or a check-in correction.
// Entries are created once and never updated or deleted.
type LedgerEntry struct {
	ID          uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        enum.LedgerEntryType `gorm:"default:0;index" json:"type"`
	Amount      int64                `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Description string               `gorm:"size:255;not null" json:"description"`
	Metadata    datatypes.JSONMap    `json:"metadata,omitempty"`
	CompletedAt time.Time            `gorm:"not null" json:"completed_at"`
	CreatedBy   uuid.UUID            `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	type Alias LedgerEntry
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(e),
		Amount: float64(e.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new ledger entry
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Metadata keys used when linking entries back to their source records.
const (
	LedgerMetaEvent         = "event"
	LedgerMetaInvoiceID     = "invoice_id"
	LedgerMetaBookingID     = "booking_id"
	LedgerMetaPaymentMethod = "payment_method"
	LedgerMetaAircraftID    = "aircraft_id"
)

// Values stored under LedgerMetaEvent. Queries that need a particular kind of
// entry (the approval-idempotency guard in particular) match on these exactly;
// descriptions stay free text for humans.
const (
	LedgerEventInvoiceCreated   = "invoice_created"
	LedgerEventInvoiceApproved  = "invoice_approved"
	LedgerEventPaymentReceived  = "payment_received"
	LedgerEventCheckinCorrected = "checkin_corrected"
)
