package viewmodel

import (
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/monthview"
	"github.com/ManuelReschke/opad/internal/pkg/streak"
)

// DayCell is one square of the rendered month.
type DayCell struct {
	Label   string
	State   string
	Missing string
	URL     string
	IsToday bool
}

// MonthPage feeds views/calendar/month.html.
type MonthPage struct {
	Layout
	Title    string
	Month    string
	Prev     string
	Next     string
	Weekdays [calendar.Columns]string
	Weeks    [][]DayCell
	Streak   streak.Summary
	Months   []MonthLink
}

type MonthLink struct {
	Month   string
	Title   string
	Current bool
}

// NewMonthPage arranges a resolved view into week rows. Prev and Next stay
// empty at the ends of the selectable range.
func NewMonthPage(view monthview.View, today calendar.Date, summary streak.Summary, months []calendar.YearMonth) MonthPage {
	ym := view.Grid.Month
	page := MonthPage{
		Layout:   Layout{Page: "calendar", FromProtected: true},
		Title:    ym.Title(),
		Month:    ym.String(),
		Weekdays: calendar.WeekdayLabels,
		Streak:   summary,
	}

	for i, m := range months {
		page.Months = append(page.Months, MonthLink{Month: m.String(), Title: m.Title(), Current: m == ym})
		if m != ym {
			continue
		}
		if i > 0 {
			page.Prev = months[i-1].String()
		}
		if i < len(months)-1 {
			page.Next = months[i+1].String()
		}
	}

	labels := view.Grid.Labels()
	weeks := view.RowCount - 1
	for w := 0; w < weeks; w++ {
		row := make([]DayCell, 0, calendar.Columns)
		for col := 0; col < calendar.Columns; col++ {
			slot := w*calendar.Columns + col
			cell := view.Cells[slot]
			row = append(row, DayCell{
				Label:   labels[slot],
				State:   string(cell.State),
				Missing: string(cell.Missing),
				URL:     cell.URL,
				IsToday: cell.Day > 0 && cell.Date.Equal(today),
			})
		}
		page.Weeks = append(page.Weeks, row)
	}
	return page
}
