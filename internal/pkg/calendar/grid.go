package calendar

import "strconv"

const (
	Columns   = 7
	SlotCount = 42
	// slots 35..41 form the sixth week row
	lastWeekStart = 35
)

// WeekdayLabels are the grid column headers, Sunday first.
var WeekdayLabels = [Columns]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// CalendarDay is one slot of a month grid. Day is 0 for padding slots.
type CalendarDay struct {
	Slot   int
	Row    int
	Column int
	Day    int
	Date   Date
}

func (c CalendarDay) IsPadding() bool {
	return c.Day == 0
}

// MonthGrid is the fixed 6x7 slot layout of one month.
type MonthGrid struct {
	Month  YearMonth
	Offset int
	Slots  [SlotCount]CalendarDay
}

// BuildMonthGrid lays out ym so that slot i falls on weekday i%7 (Sunday = 0).
// today is accepted for callers that pair the grid with per-day state; the
// layout itself does not depend on it.
func BuildMonthGrid(ym YearMonth, today Date) MonthGrid {
	_ = today

	grid := MonthGrid{
		Month:  ym,
		Offset: int(ym.FirstDay().Weekday()) % Columns,
	}
	days := ym.DaysIn()

	for k := 0; k < SlotCount; k++ {
		slot := CalendarDay{
			Slot:   k,
			Row:    k / Columns,
			Column: k % Columns,
		}
		if day := k - grid.Offset + 1; day >= 1 && day <= days {
			slot.Day = day
			slot.Date = ym.AtDay(day)
		}
		grid.Slots[k] = slot
	}

	return grid
}

// RowCount counts the weekday header row plus the week rows needed:
// 7 if a real day lands in the sixth week row, otherwise 6.
func (g MonthGrid) RowCount() int {
	for k := lastWeekStart; k < SlotCount; k++ {
		if !g.Slots[k].IsPadding() {
			return 7
		}
	}
	return 6
}

// WeekRows is RowCount without the header row.
func (g MonthGrid) WeekRows() int {
	return g.RowCount() - 1
}

// Days returns the non-padding slots in order.
func (g MonthGrid) Days() []CalendarDay {
	days := make([]CalendarDay, 0, g.Month.DaysIn())
	for _, slot := range g.Slots {
		if !slot.IsPadding() {
			days = append(days, slot)
		}
	}
	return days
}

// Labels returns the day numbers as display strings, "" for padding.
func (g MonthGrid) Labels() [SlotCount]string {
	var labels [SlotCount]string
	for i, slot := range g.Slots {
		if !slot.IsPadding() {
			labels[i] = strconv.Itoa(slot.Day)
		}
	}
	return labels
}
