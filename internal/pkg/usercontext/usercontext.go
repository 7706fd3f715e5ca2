package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the user behind a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// Set stores uc on the request together with the flat compatibility locals.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(LocalsKey, uc)
	c.Locals(KeyFromProtected, uc.IsLoggedIn)
	if uc.IsLoggedIn {
		c.Locals(KeyUserID, uc.UserID)
		c.Locals(KeyEmail, uc.Email)
	}
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(LocalsKey).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetEmail returns the current user's email, or empty string if not logged in
func GetEmail(c *fiber.Ctx) string {
	return GetUserContext(c).Email
}
