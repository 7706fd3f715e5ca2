package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/constants"
	"github.com/ManuelReschke/opad/internal/pkg/session"
	"github.com/ManuelReschke/opad/internal/pkg/usercontext"
	"github.com/ManuelReschke/opad/internal/pkg/viewmodel"
)

const mainLayout = "layouts/main"

// HandleIndex sends visitors to their calendar or to the login.
func HandleIndex(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.CalendarRoute, fiber.StatusSeeOther)
	}
	return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
}

// HandleAuthLogin renders the login form and handles its submission.
func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		if usercontext.IsLoggedIn(c) {
			return c.Redirect(constants.CalendarRoute, fiber.StatusSeeOther)
		}
		return c.Render("auth/login", viewmodel.Layout{Page: "login"}, mainLayout)
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).Render("auth/login", viewmodel.Layout{
			Page: "login", IsError: true, Msg: invalidCredentials, Email: req.Email,
		}, mainLayout)
	}

	user, status, msg := authenticate(c.UserContext(), req.Email, req.Password)
	if user == nil {
		return c.Status(status).Render("auth/login", viewmodel.Layout{
			Page: "login", IsError: true, Msg: msg, Email: req.Email,
		}, mainLayout)
	}
	if err := session.Login(c, user.ID, user.Email); err != nil {
		log.Errorf("[Auth] web login failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("auth/login", viewmodel.Layout{
			Page: "login", IsError: true, Msg: "Something went wrong, please try again.",
		}, mainLayout)
	}
	if err := deps.Users.TouchLastLogin(c.UserContext(), user.ID); err != nil {
		log.Warnf("[Auth] failed to record login of user %d: %v", user.ID, err)
	}
	return c.Redirect(constants.CalendarRoute, fiber.StatusSeeOther)
}

// HandleAuthLogout ends the session and returns to the login.
func HandleAuthLogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		log.Warnf("[Auth] logout: %v", err)
	}
	return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
}

// HandleResetPasswordPage shows the form linked from the reset mail and
// applies the new password.
func HandleResetPasswordPage(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/reset", viewmodel.ResetPage{
			Layout: viewmodel.Layout{Page: "reset"},
			Token:  c.Query("token"),
		}, mainLayout)
	}

	var req PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	fail := func(status int, msg string) error {
		return c.Status(status).Render("auth/reset", viewmodel.ResetPage{
			Layout: viewmodel.Layout{Page: "reset", IsError: true, Msg: msg},
			Token:  req.Token,
		}, mainLayout)
	}
	if err := validate.Struct(req); err != nil {
		return fail(fiber.StatusBadRequest, validationMessage(err))
	}

	code, msg, err := resetPassword(c.UserContext(), req.Token, req.Password)
	if err != nil {
		log.Errorf("[Auth] web password reset: %v", err)
		return fail(fiber.StatusInternalServerError, "Something went wrong, please try again.")
	}
	if code != "" {
		return fail(fiber.StatusBadRequest, msg)
	}
	return c.Render("auth/login", viewmodel.Layout{
		Page: "login", Msg: "Your password was changed. Please log in.",
	}, mainLayout)
}

// HandleCalendarPage renders one month, the current one without a param.
func HandleCalendarPage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)
	today := deps.Photos.Today()

	ym := today.YearMonth()
	if raw := c.Params("month"); raw != "" {
		parsed, err := calendar.ParseYearMonth(raw)
		if err != nil {
			return c.Redirect(constants.CalendarRoute, fiber.StatusSeeOther)
		}
		ym = parsed
	}

	user, err := deps.Users.GetByID(c.UserContext(), userID)
	if err != nil {
		log.Errorf("[Calendar] load user %d: %v", userID, err)
		return fiber.ErrInternalServerError
	}

	view := deps.Photos.Month(ctx, userID, ym)
	page := viewmodel.NewMonthPage(view, today, streakOrZero(c, userID), deps.Photos.Months(user))
	page.Email = user.Email
	return c.Render("calendar/month", page, mainLayout)
}
