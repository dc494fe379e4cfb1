package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemOrigin records how an invoice item came to exist. Auto-generated time
// charges are replaced wholesale when a check-in is re-saved; manual items
// are never touched. Tagging the origin at creation avoids matching on
// free-text descriptions.
type ItemOrigin int

const (
	ItemOriginManual         ItemOrigin = 0
	ItemOriginAutoTimeCharge ItemOrigin = 1
)

func (o ItemOrigin) String() string {
	names := [...]string{"Manual", "AutoTimeCharge"}
	if int(o) < 0 || int(o) >= len(names) {
		return "Manual"
	}
	return names[o]
}

func (o ItemOrigin) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *ItemOrigin) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*o = ItemOrigin(i)
		return nil
	}
	switch str {
	case "Manual":
		*o = ItemOriginManual
	case "AutoTimeCharge":
		*o = ItemOriginAutoTimeCharge
	}
	return nil
}

func (o ItemOrigin) Value() (driver.Value, error) {
	return int64(o), nil
}

func (o *ItemOrigin) Scan(value interface{}) error {
	if value == nil {
		*o = ItemOriginManual
		return nil
	}
	switch v := value.(type) {
	case int64:
		*o = ItemOrigin(v)
	case int:
		*o = ItemOrigin(v)
	}
	return nil
}
