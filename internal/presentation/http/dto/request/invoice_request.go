package request

import (
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest represents one line on an invoice creation request.
// Monetary amounts are expressed in currency units, not cents.
type InvoiceItemRequest struct {
	Description string   `json:"description" binding:"required,min=1,max=255"`
	Quantity    float64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64  `json:"unit_price" binding:"required"`
	TaxRate     *float64 `json:"tax_rate" binding:"omitempty,min=0,max=1"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	UserID    uuid.UUID            `json:"user_id" binding:"required"`
	BookingID *uuid.UUID           `json:"booking_id"`
	Status    string               `json:"status" binding:"omitempty,oneof=draft pending Draft Pending"`
	TaxRate   *float64             `json:"tax_rate" binding:"omitempty,min=0,max=1"`
	DueDate   *time.Time           `json:"due_date"`
	Reference string               `json:"reference" binding:"omitempty,max=100"`
	Notes     string               `json:"notes"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToServiceInput converts the request into the invoice service input
func (r *CreateInvoiceRequest) ToServiceInput() *service.CreateInvoiceInput {
	status := enum.InvoiceStatusDraft
	if r.Status != "" {
		if parsed, ok := enum.ParseInvoiceStatus(r.Status); ok {
			status = parsed
		}
	}
	return &service.CreateInvoiceInput{
		UserID:    r.UserID,
		BookingID: r.BookingID,
		Status:    status,
		TaxRate:   optionalRate(r.TaxRate),
		DueDate:   r.DueDate,
		Reference: r.Reference,
		Notes:     r.Notes,
		Items:     toItemInputs(r.Items),
	}
}

// UpdateInvoiceStatusRequest represents an invoice status transition request
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RecordPaymentRequest represents a payment recording request
type RecordPaymentRequest struct {
	Amount    float64    `json:"amount" binding:"required,gt=0"`
	Method    string     `json:"method" binding:"required,oneof=cash card bank_transfer account_credit"`
	Reference string     `json:"reference" binding:"omitempty,max=100"`
	Notes     string     `json:"notes"`
	PaidAt    *time.Time `json:"paid_at"`
}

// ToServiceInput converts the request into the payment service input
func (r *RecordPaymentRequest) ToServiceInput() *service.RecordPaymentInput {
	return &service.RecordPaymentInput{
		Amount:    money.ToCents(decimal.NewFromFloat(r.Amount)),
		Method:    r.Method,
		Reference: r.Reference,
		Notes:     r.Notes,
		PaidAt:    r.PaidAt,
	}
}

func toItemInputs(items []InvoiceItemRequest) []service.InvoiceItemInput {
	out := make([]service.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.InvoiceItemInput{
			Description: item.Description,
			Origin:      enum.ItemOriginManual,
			Quantity:    decimal.NewFromFloat(item.Quantity),
			UnitPrice:   money.ToCents(decimal.NewFromFloat(item.UnitPrice)),
			TaxRate:     optionalRate(item.TaxRate),
		})
	}
	return out
}

func optionalRate(rate *float64) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	d := decimal.NewFromFloat(*rate)
	return &d
}
