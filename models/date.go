package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04:05"
)

// ReferenceDate is the calendar day every [TimeOfDay] is pinned to.
var ReferenceDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrInvalidDate is returned when a date is neither YYYY-MM-DD nor RFC 3339.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTimeOfDay is returned when a time of day is neither HH:mm nor HH:mm:ss.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
)

// Date is a calendar day in UTC. On the wire it is YYYY-MM-DD; full
// RFC 3339 timestamps are accepted on input and truncated to their day.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	t = t.UTC()
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDate(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Value stores the day as YYYY-MM-DD, which every supported database
// accepts for a DATE column.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		parsed, err := parseStoredDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := parseStoredDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, src)
}

func parseStoredDate(s string) (Date, error) {
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return NewDate(t), nil
		}
	}
	return ParseDate(s)
}

// TimeOfDay is a wall-clock time stored on [ReferenceDate].
type TimeOfDay struct {
	time.Time
}

// NewTimeOfDay keeps only the clock part of t and moves it to [ReferenceDate].
func NewTimeOfDay(t time.Time) TimeOfDay {
	t = t.UTC()
	return TimeOfDay{time.Date(1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseTimeOfDay accepts HH:mm and HH:mm:ss.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{timeOfDayLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

func (t TimeOfDay) String() string {
	return t.Format(timeOfDayLayout)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimeOfDay, err)
	}

	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// Value stores the time as HH:mm:ss.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = NewTimeOfDay(v)
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	return fmt.Errorf("%w: cannot scan %T", ErrInvalidTimeOfDay, src)
}
