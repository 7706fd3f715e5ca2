package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMonthGrid_AllMonths(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		for month := time.January; month <= time.December; month++ {
			ym := YearMonth{Year: year, Month: month}
			grid := BuildMonthGrid(ym, NewDate(2024, time.February, 29))

			require.Len(t, grid.Slots, SlotCount)
			assert.Len(t, grid.Days(), ym.DaysIn(), ym.String())

			first := grid.Slots[grid.Offset]
			require.Equal(t, 1, first.Day, ym.String())
			assert.Equal(t, ym.FirstDay().Weekday(), time.Weekday(grid.Offset), ym.String())

			for i, slot := range grid.Slots {
				assert.Equal(t, i, slot.Slot)
				assert.Equal(t, i/Columns, slot.Row)
				assert.Equal(t, i%Columns, slot.Column)
				if !slot.IsPadding() {
					assert.Equal(t, time.Weekday(i%Columns), slot.Date.Weekday(), "%s slot %d", ym, i)
				}
			}

			if grid.RowCount() == 6 {
				for _, day := range grid.Days() {
					assert.Less(t, day.Slot, 35, ym.String())
				}
			}
		}
	}
}

func TestBuildMonthGrid_LeapFebruary2024(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.February}
	grid := BuildMonthGrid(ym, NewDate(2024, time.February, 29))

	assert.Equal(t, 4, grid.Offset)
	assert.Equal(t, time.Thursday, ym.FirstDay().Weekday())
	assert.Len(t, grid.Days(), 29)
	assert.Equal(t, 29, grid.Slots[32].Day)
	assert.Equal(t, 6, grid.RowCount())
	assert.Equal(t, 5, grid.WeekRows())

	labels := grid.Labels()
	assert.Equal(t, "", labels[3])
	assert.Equal(t, "1", labels[4])
	assert.Equal(t, "29", labels[32])
	assert.Equal(t, "", labels[33])
}

func TestBuildMonthGrid_RowCount(t *testing.T) {
	tests := []struct {
		name     string
		ym       YearMonth
		offset   int
		rowCount int
	}{
		{"March 2024 spills into sixth week", YearMonth{2024, time.March}, 5, 7},
		{"August 2025 spills into sixth week", YearMonth{2025, time.August}, 5, 7},
		{"February 2015 fits four weeks", YearMonth{2015, time.February}, 0, 6},
		{"September 2024 fits five weeks", YearMonth{2024, time.September}, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := BuildMonthGrid(tt.ym, Date{})
			assert.Equal(t, tt.offset, grid.Offset)
			assert.Equal(t, tt.rowCount, grid.RowCount())
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	months := MonthsBetween(YearMonth{2023, time.November}, YearMonth{2024, time.February})
	require.Len(t, months, 4)
	assert.Equal(t, "2023-11", months[0].String())
	assert.Equal(t, "2023-12", months[1].String())
	assert.Equal(t, "2024-01", months[2].String())
	assert.Equal(t, "2024-02", months[3].String())

	assert.Len(t, MonthsBetween(YearMonth{2024, time.May}, YearMonth{2024, time.May}), 1)
	assert.Nil(t, MonthsBetween(YearMonth{2024, time.May}, YearMonth{2024, time.April}))
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2024, time.February}, ym)
	assert.Equal(t, "February 2024", ym.Title())
	assert.Equal(t, 29, ym.DaysIn())
	assert.Equal(t, 28, YearMonth{2023, time.February}.DaysIn())
	assert.Equal(t, YearMonth{2025, time.January}, YearMonth{2024, time.December}.AddMonths(1))

	_, err = ParseYearMonth("2024-13")
	assert.Error(t, err)
}
