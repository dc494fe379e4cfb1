package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus int

const (
	InvoiceStatusDraft InvoiceStatus = iota
	InvoiceStatusPending
	InvoiceStatusPaid
	InvoiceStatusCancelled
	InvoiceStatusRefunded
)

var invoiceStatusNames = [...]string{"Draft", "Pending", "Paid", "Cancelled", "Refunded"}

func (s InvoiceStatus) String() string {
	if int(s) < 0 || int(s) >= len(invoiceStatusNames) {
		return "Draft"
	}
	return invoiceStatusNames[s]
}

// ParseInvoiceStatus resolves a case-insensitive status name
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	for i, name := range invoiceStatusNames {
		if strings.EqualFold(name, s) {
			return InvoiceStatus(i), true
		}
	}
	return InvoiceStatusDraft, false
}

// IsActive reports whether the invoice can still move through the billing
// workflow (draft or pending)
func (s InvoiceStatus) IsActive() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPending
}

// IsTerminal reports whether the invoice has exited the workflow
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled || s == InvoiceStatusRefunded
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	for i, name := range invoiceStatusNames {
		if name == str {
			*s = InvoiceStatus(i)
			return nil
		}
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
