package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TISMethod selects which meter drives an aircraft's total-time-in-service
// counter. AirswitchFactored applies the aircraft's configured reduction
// factor to the airswitch delta (used where the switch over-reads taxi time).
type TISMethod int

const (
	TISMethodHobbs TISMethod = iota
	TISMethodTach
	TISMethodAirswitch
	TISMethodAirswitchFactored
)

var tisMethodNames = [...]string{"Hobbs", "Tach", "Airswitch", "AirswitchFactored"}

func (m TISMethod) String() string {
	if int(m) < 0 || int(m) >= len(tisMethodNames) {
		return "Hobbs"
	}
	return tisMethodNames[m]
}

func (m TISMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *TISMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = TISMethod(i)
		return nil
	}
	for i, name := range tisMethodNames {
		if name == str {
			*m = TISMethod(i)
			return nil
		}
	}
	return nil
}

func (m TISMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *TISMethod) Scan(value interface{}) error {
	if value == nil {
		*m = TISMethodHobbs
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = TISMethod(v)
	case int:
		*m = TISMethod(v)
	}
	return nil
}
