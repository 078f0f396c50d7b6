package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the wire format for every timestamp: second precision, no zone.
const TimeLayout = "2006-01-02T15:04:05"

// DateTime wraps time.Time to serialize as "yyyy-MM-ddTHH:mm:ss".
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(TimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return fmt.Errorf("parse datetime %q: %w", raw, err)
	}
	d.Time = t
	return nil
}
