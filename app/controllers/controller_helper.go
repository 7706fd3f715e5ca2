package controllers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/app/repository"
	"github.com/ManuelReschke/opad/internal/pkg/mail"
	"github.com/ManuelReschke/opad/internal/pkg/photos"
	"github.com/ManuelReschke/opad/internal/pkg/upload"
)

// Dependencies are shared by every handler in this package.
type Dependencies struct {
	Users       repository.UserRepository
	Photos      *photos.Service
	Mailer      mail.Sender
	ResetSecret string
	// BaseURL is the public origin used in mails.
	BaseURL string
}

var (
	deps     Dependencies
	validate = validator.New()
)

// Initialize sets the handler dependencies. Call once before routing.
func Initialize(d Dependencies) {
	if d.Mailer == nil {
		d.Mailer = mail.SMTPSender{}
	}
	deps = d
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusBadRequest, "bad_request", message)
}

func internalError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("[API] %s %s: %s: %v", c.Method(), c.Path(), message, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", message)
}

// photoError maps service errors to responses.
func photoError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, photos.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", photos.ErrNotFound.Error())
	case errors.Is(err, photos.ErrFutureDate):
		return jsonError(c, fiber.StatusUnprocessableEntity, "future_date", err.Error())
	case errors.Is(err, photos.ErrNoCaptureDate):
		return jsonError(c, fiber.StatusUnprocessableEntity, "no_capture_date", err.Error())
	case errors.Is(err, photos.ErrCaptureDateMismatch):
		return jsonError(c, fiber.StatusUnprocessableEntity, "capture_date_mismatch", photos.ErrCaptureDateMismatch.Error())
	case errors.Is(err, upload.ErrTooLarge):
		return jsonError(c, fiber.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, upload.ErrEmpty):
		return badRequest(c, err.Error())
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrHTMLContent), errors.Is(err, upload.ErrSVGContent):
		return jsonError(c, fiber.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
	}
	return internalError(c, "Photo operation failed", err)
}

func invalidDate(c *fiber.Ctx) error {
	return badRequest(c, "date must look like 2006-01-02")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	switch fe := verrs[0]; {
	case fe.Field() == "Email":
		return "Please enter a valid email address."
	case fe.Field() == "Password" && fe.Tag() == "min":
		return fmt.Sprintf("The password must be at least %d characters.", models.MinPasswordLength)
	case fe.Tag() == "eqfield":
		return "The passwords do not match."
	default:
		return fe.Field() + " is invalid"
	}
}
