package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/usercontext"
)

type monthEntry struct {
	Month string `json:"month"`
	Title string `json:"title"`
}

// HandleGetStreak returns the streak summary, zero when it cannot be read.
func HandleGetStreak(c *fiber.Ctx) error {
	return c.JSON(streakOrZero(c, usercontext.GetUserID(c)))
}

// HandleGetMonths lists the months from account creation to today.
func HandleGetMonths(c *fiber.Ctx) error {
	user, err := deps.Users.GetByID(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return internalError(c, "Failed to load user", err)
	}

	months := deps.Photos.Months(user)
	entries := make([]monthEntry, 0, len(months))
	for _, m := range months {
		entries = append(entries, monthEntry{Month: m.String(), Title: m.Title()})
	}
	return c.JSON(fiber.Map{
		"today":  deps.Photos.Today(),
		"months": entries,
	})
}

// HandleGetMonth returns the grid of one month with every cell resolved.
func HandleGetMonth(c *fiber.Ctx, month string) error {
	ym, err := calendar.ParseYearMonth(month)
	if err != nil {
		return badRequest(c, "month must look like 2006-01")
	}

	view := deps.Photos.Month(c.UserContext(), usercontext.GetUserID(c), ym)
	return c.JSON(fiber.Map{
		"month":      ym,
		"title":      ym.Title(),
		"today":      deps.Photos.Today(),
		"offset":     view.Grid.Offset,
		"row_count":  view.RowCount,
		"week_rows":  view.RowCount - 1,
		"weekdays":   calendar.WeekdayLabels,
		"generation": view.Generation,
		"cells":      view.Cells,
	})
}
