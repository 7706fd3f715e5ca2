package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/ManuelReschke/opad/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (s *APIServer) PostAuthRegister(c *fiber.Ctx) error {
	return controllers.HandleAPIRegister(c)
}

func (s *APIServer) PostAuthLogin(c *fiber.Ctx) error {
	return controllers.HandleAPILogin(c)
}

func (s *APIServer) PostAuthLogout(c *fiber.Ctx) error {
	return controllers.HandleAPILogout(c)
}

func (s *APIServer) PostAuthPasswordReset(c *fiber.Ctx) error {
	return controllers.HandleAPIPasswordResetRequest(c)
}

func (s *APIServer) PostAuthPasswordResetConfirm(c *fiber.Ctx) error {
	return controllers.HandleAPIPasswordResetConfirm(c)
}

// GetAccount returns the signed-in account including its streak.
func (s *APIServer) GetAccount(c *fiber.Ctx) error {
	return controllers.HandleGetAccount(c)
}

// DeleteAccount removes the account and every photo of it.
func (s *APIServer) DeleteAccount(c *fiber.Ctx) error {
	return controllers.HandleDeleteAccount(c)
}

func (s *APIServer) GetStreak(c *fiber.Ctx) error {
	return controllers.HandleGetStreak(c)
}

func (s *APIServer) GetCalendar(c *fiber.Ctx) error {
	return controllers.HandleGetMonths(c)
}

func (s *APIServer) GetCalendarMonth(c *fiber.Ctx, month string) error {
	return controllers.HandleGetMonth(c, month)
}

// PostPhotoToday uploads today's picture.
func (s *APIServer) PostPhotoToday(c *fiber.Ctx) error {
	return controllers.HandleUploadToday(c)
}

func (s *APIServer) GetPhoto(c *fiber.Ctx, date string) error {
	return controllers.HandleGetPhoto(c, date)
}

// PutPhoto fills in a past day; the capture date has to match.
func (s *APIServer) PutPhoto(c *fiber.Ctx, date string) error {
	return controllers.HandlePutPhoto(c, date)
}

func (s *APIServer) GetPhotoImage(c *fiber.Ctx, date string) error {
	return controllers.HandleGetPhotoImage(c, date)
}
