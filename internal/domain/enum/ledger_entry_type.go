package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LedgerEntryType distinguishes informational adjustments from financial
// debits in the member ledger
type LedgerEntryType int

const (
	LedgerEntryAdjustment LedgerEntryType = 0
	LedgerEntryDebit      LedgerEntryType = 1
)

func (t LedgerEntryType) String() string {
	names := [...]string{"Adjustment", "Debit"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Adjustment"
	}
	return names[t]
}

// IsFinancial reports whether the entry affects money owed
func (t LedgerEntryType) IsFinancial() bool {
	return t == LedgerEntryDebit
}

func (t LedgerEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LedgerEntryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = LedgerEntryType(i)
		return nil
	}
	switch str {
	case "Adjustment":
		*t = LedgerEntryAdjustment
	case "Debit":
		*t = LedgerEntryDebit
	}
	return nil
}

func (t LedgerEntryType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *LedgerEntryType) Scan(value interface{}) error {
	if value == nil {
		*t = LedgerEntryAdjustment
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = LedgerEntryType(v)
	case int:
		*t = LedgerEntryType(v)
	}
	return nil
}
