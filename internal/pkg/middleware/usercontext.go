package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/opad/internal/pkg/session"
	"github.com/ManuelReschke/opad/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session user once per request.
func UserContextMiddleware(c *fiber.Ctx) error {
	userID, email, ok := session.CurrentUser(c)
	if !ok {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}
	usercontext.Set(c, usercontext.UserContext{
		UserID:     userID,
		Email:      email,
		IsLoggedIn: true,
	})
	return c.Next()
}
