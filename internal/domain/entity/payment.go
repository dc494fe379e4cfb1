package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment records money received against an invoice. Each payment is created
// in the same transaction as its ledger entry and is append-only.
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	LedgerEntryID uuid.UUID `gorm:"type:uuid;not null" json:"ledger_entry_id"`
	Amount        int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Method        string    `gorm:"size:50;not null" json:"method"`
	Reference     string    `gorm:"size:100" json:"reference"`
	Notes         string    `gorm:"type:text" json:"notes"`
	PaidAt        time.Time `gorm:"not null" json:"paid_at"`
	CreatedBy     uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	Invoice     Invoice     `gorm:"foreignKey:InvoiceID" json:"-"`
	LedgerEntry LedgerEntry `gorm:"foreignKey:LedgerEntryID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
