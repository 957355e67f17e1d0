package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in the local time zone. The time-of-day part is
// always midnight.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in local time.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates t to its local calendar date.
func DateOf(t time.Time) Date {
	t = t.In(time.Local)
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD, or a full RFC 3339 timestamp which is
// reduced to its local calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO date, e.g. 2024-01-31.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey returns the zero-padded YEAR-MONTH of a date, e.g. 2024-01.
func MonthKey(d Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// CurrentMonth returns the month key of now in local time.
func CurrentMonth(now time.Time) string {
	return MonthKey(DateOf(now))
}

// ParseMonthKey validates a YEAR-MONTH string and returns it normalised.
func ParseMonthKey(s string) (string, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())), nil
}
