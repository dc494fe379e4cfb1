package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BookingType represents what a calendar booking reserves. Only flight
// bookings go through post-flight check-in and billing.
type BookingType int

const (
	BookingTypeFlight BookingType = iota
	BookingTypeGround
	BookingTypeMaintenance
)

var bookingTypeNames = [...]string{"Flight", "Ground", "Maintenance"}

func (t BookingType) String() string {
	if int(t) < 0 || int(t) >= len(bookingTypeNames) {
		return "Flight"
	}
	return bookingTypeNames[t]
}

func (t BookingType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *BookingType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = BookingType(i)
		return nil
	}
	for i, name := range bookingTypeNames {
		if name == str {
			*t = BookingType(i)
			return nil
		}
	}
	return nil
}

func (t BookingType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *BookingType) Scan(value interface{}) error {
	if value == nil {
		*t = BookingTypeFlight
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = BookingType(v)
	case int:
		*t = BookingType(v)
	}
	return nil
}
