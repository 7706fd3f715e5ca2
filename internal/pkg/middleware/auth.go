package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/opad/internal/pkg/constants"
	icuser "github.com/ManuelReschke/opad/internal/pkg/usercontext"
)

func loggedIn(c *fiber.Ctx) bool {
	b, ok := c.Locals(icuser.KeyFromProtected).(bool)
	return ok && b
}

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !loggedIn(c) {
		return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !loggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}
