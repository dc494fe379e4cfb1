package entity

import (
	"encoding/json"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice represents a bill issued to a member. All monetary columns are
// stored in cents and recomputed server-side from the non-deleted items;
// callers never write totals directly.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string             `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID     *uuid.UUID         `gorm:"type:uuid;uniqueIndex:udx_invoices_booking,where:deleted_at IS NULL" json:"booking_id,omitempty"`
	Status        enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	TaxRate       decimal.Decimal    `gorm:"type:numeric(6,4)" json:"tax_rate"`
	SubTotal      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxTotal      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total         int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalPaid     int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	BalanceDue    int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	IssueDate     *time.Time         `gorm:"type:date" json:"issue_date,omitempty"`
	DueDate       *time.Time         `gorm:"type:date" json:"due_date,omitempty"`
	PaidDate      *time.Time         `json:"paid_date,omitempty"`
	Reference     string             `gorm:"size:100" json:"reference"`
	Notes         string             `gorm:"type:text" json:"notes"`
	CreatedBy     uuid.UUID          `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User  User          `gorm:"foreignKey:UserID" json:"-"`
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		SubTotal   float64 `json:"sub_total"`
		TaxTotal   float64 `json:"tax_total"`
		Total      float64 `json:"total"`
		TotalPaid  float64 `json:"total_paid"`
		BalanceDue float64 `json:"balance_due"`
		Overdue    bool    `json:"overdue"`
	}{
		Alias:      Alias(i),
		SubTotal:   float64(i.SubTotal) / 100,
		TaxTotal:   float64(i.TaxTotal) / 100,
		Total:      float64(i.Total) / 100,
		TotalPaid:  float64(i.TotalPaid) / 100,
		BalanceDue: float64(i.BalanceDue) / 100,
		Overdue:    i.IsOverdue(time.Now()),
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsOverdue reports whether the invoice is pending past its due date.
// Overdue is derived at read time, never stored as a status.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == enum.InvoiceStatusPending &&
		i.DueDate != nil &&
		now.After(i.DueDate.AddDate(0, 0, 1))
}

// InvoiceItem represents a single line on an invoice. Items are mutable only
// while the owning invoice is in draft status; the invoice service enforces
// this on every write path.
type InvoiceItem struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description   string           `gorm:"size:255;not null" json:"description"`
	Origin        enum.ItemOrigin  `gorm:"default:0" json:"origin"`
	Quantity      decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice     int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	TaxRate       *decimal.Decimal `gorm:"type:numeric(6,4)" json:"tax_rate,omitempty"`
	Amount        int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	TaxAmount     int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	RateInclusive int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	LineTotal     int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceItem
	return json.Marshal(&struct {
		Alias
		UnitPrice     float64 `json:"unit_price"`
		Amount        float64 `json:"amount"`
		TaxAmount     float64 `json:"tax_amount"`
		RateInclusive float64 `json:"rate_inclusive"`
		LineTotal     float64 `json:"line_total"`
	}{
		Alias:         Alias(it),
		UnitPrice:     float64(it.UnitPrice) / 100,
		Amount:        float64(it.Amount) / 100,
		TaxAmount:     float64(it.TaxAmount) / 100,
		RateInclusive: float64(it.RateInclusive) / 100,
		LineTotal:     float64(it.LineTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice item
func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
