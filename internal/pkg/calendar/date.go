package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	isoLayout  = "2006-01-02"
	monthTitle = "January 2006"
)

var ErrInvalidKey = errors.New("invalid day key")

// Date is a civil calendar date without time of day or zone.
// The zero value is used for padding slots and means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

func (d Date) Equal(o Date) bool {
	return d == o
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// String returns the ISO form used in URLs and JSON.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(isoLayout)
}

// Key returns the MM.DD.YY key used by the photo store and blob paths.
func (d Date) Key() string {
	return FormatKey(d)
}

// FormatKey formats d as MM.DD.YY. Only use it at the store boundary,
// the two-digit year does not sort and is ambiguous across centuries.
func FormatKey(d Date) string {
	year := d.Year % 100
	if year < 0 {
		year = -year
	}
	return fmt.Sprintf("%02d.%02d.%02d", int(d.Month), d.Day, year)
}

// ParseKey parses an MM.DD.YY key. The century is chosen so the result is
// within 50 years of ref.
func ParseKey(key string, ref Date) (Date, error) {
	var mm, dd, yy int
	if len(key) != 8 || key[2] != '.' || key[5] != '.' {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if _, err := fmt.Sscanf(key, "%02d.%02d.%02d", &mm, &dd, &yy); err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if mm < 1 || mm > 12 || dd < 1 || yy < 0 || yy > 99 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	century := ref.Year - ref.Year%100
	year := century + yy
	switch {
	case year > ref.Year+50:
		year -= 100
	case year <= ref.Year-50:
		year += 100
	}

	ym := YearMonth{Year: year, Month: time.Month(mm)}
	if dd > ym.DaysIn() {
		return Date{}, fmt.Errorf("%w: %q has no day %d", ErrInvalidKey, key, dd)
	}
	return Date{Year: year, Month: time.Month(mm), Day: dd}, nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
