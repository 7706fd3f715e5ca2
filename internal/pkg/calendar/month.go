package calendar

import (
	"fmt"
	"time"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) FirstDay() Date {
	return Date{Year: ym.Year, Month: ym.Month, Day: 1}
}

func (ym YearMonth) AtDay(day int) Date {
	return Date{Year: ym.Year, Month: ym.Month, Day: day}
}

// DaysIn returns 28..31.
func (ym YearMonth) DaysIn() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Title is the heading shown above a month grid, e.g. "February 2024".
func (ym YearMonth) Title() string {
	return ym.FirstDay().Time().Format(monthTitle)
}

// MonthsBetween lists every month from `from` to `to`, both included.
// It returns nil when to is before from.
func MonthsBetween(from, to YearMonth) []YearMonth {
	if to.Before(from) {
		return nil
	}
	var months []YearMonth
	for ym := from; !to.Before(ym); ym = ym.AddMonths(1) {
		months = append(months, ym)
	}
	return months
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}
