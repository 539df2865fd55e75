// Package civil provides a calendar date without a time or location.
//
// Attendance is keyed by the day an event happened in the organisation's
// timezone, so two timestamps belong to the same day only when their Date
// values are equal.
package civil

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const layout = "2006-01-02"

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date string in "YYYY-MM-DD" format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t, time.UTC), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns the instant at which d starts in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndIn returns the last second of d in loc.
func (d Date) EndIn(loc *time.Location) time.Time {
	return d.AddDays(1).In(loc).Add(-time.Second)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n), time.UTC)
}

func (d Date) Before(u Date) bool {
	return d.compare(u) < 0
}

func (d Date) After(u Date) bool {
	return d.compare(u) > 0
}

// InMonth reports whether d falls in the given month of year.
func (d Date) InMonth(month, year int) bool {
	return d.Year == year && int(d.Month) == month
}

func (d Date) compare(u Date) int {
	switch {
	case d.Year != u.Year:
		return d.Year - u.Year
	case d.Month != u.Month:
		return int(d.Month) - int(u.Month)
	default:
		return d.Day - u.Day
	}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as midnight UTC, which maps onto a DATE column.
func (d Date) Value() (driver.Value, error) {
	return d.In(time.UTC), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v, time.UTC)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("civil: cannot scan %T into Date", src)
	}
}
