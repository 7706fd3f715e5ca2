package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/constants"
	"github.com/ManuelReschke/opad/internal/pkg/mail"
	"github.com/ManuelReschke/opad/internal/pkg/security"
	"github.com/ManuelReschke/opad/internal/pkg/session"
)

// invalidCredentials covers unknown emails and wrong passwords alike.
const invalidCredentials = "The email or password is incorrect."

type RegisterRequest struct {
	Email                string `json:"email" form:"email" validate:"required,email,max=200"`
	Password             string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token                string `json:"token" form:"token" validate:"required"`
	Password             string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

type accountResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// HandleAPIRegister creates an account and signs it in.
func HandleAPIRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationMessage(err))
	}

	exists, err := deps.Users.EmailExists(c.UserContext(), req.Email)
	if err != nil {
		return internalError(c, "Failed to check email", err)
	}
	if exists {
		return jsonError(c, fiber.StatusConflict, "email_taken", "This email is already in use.")
	}

	user, err := models.CreateUser(req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationMessage(err))
	}
	if err := deps.Users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return jsonError(c, fiber.StatusConflict, "email_taken", "This email is already in use.")
		}
		return internalError(c, "Failed to create account", err)
	}

	if err := session.Login(c, user.ID, user.Email); err != nil {
		return internalError(c, "Failed to start session", err)
	}
	log.Infof("[Auth] registered user %d", user.ID)
	return c.Status(fiber.StatusCreated).JSON(accountResponse{ID: user.ID, Email: user.Email})
}

// authenticate checks the credentials and returns the active user.
func authenticate(ctx context.Context, email, password string) (*models.User, int, string) {
	user, err := deps.Users.GetByEmail(ctx, email)
	if err != nil || !user.CheckPassword(password) {
		return nil, fiber.StatusUnauthorized, invalidCredentials
	}
	if !user.IsActive() {
		return nil, fiber.StatusForbidden, "This account is disabled."
	}
	return user, 0, ""
}

// HandleAPILogin starts a session.
func HandleAPILogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationMessage(err))
	}

	user, status, msg := authenticate(c.UserContext(), req.Email, req.Password)
	if user == nil {
		code := "invalid_credentials"
		if status == fiber.StatusForbidden {
			code = "account_disabled"
		}
		return jsonError(c, status, code, msg)
	}

	if err := session.Login(c, user.ID, user.Email); err != nil {
		return internalError(c, "Failed to start session", err)
	}
	if err := deps.Users.TouchLastLogin(c.UserContext(), user.ID); err != nil {
		log.Warnf("[Auth] failed to record login of user %d: %v", user.ID, err)
	}
	return c.JSON(accountResponse{ID: user.ID, Email: user.Email})
}

// HandleAPILogout ends the session.
func HandleAPILogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		return internalError(c, "Failed to end session", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAPIPasswordResetRequest mails a reset link if the account exists.
// The answer is the same either way.
func HandleAPIPasswordResetRequest(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationMessage(err))
	}

	accepted := func() error {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "If an account exists for this email, a reset link is on its way.",
		})
	}

	user, err := deps.Users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("[Auth] password reset lookup failed: %v", err)
		}
		return accepted()
	}

	token, err := security.GeneratePasswordResetToken(user.ID, user.PasswordStamp(), security.PasswordResetTTL, deps.ResetSecret)
	if err != nil {
		return internalError(c, "Failed to create reset token", err)
	}
	link := fmt.Sprintf("%s%s?token=%s", deps.BaseURL, constants.ResetPasswordRoute, url.QueryEscape(token))
	subject, body := mail.PasswordResetMail(link)
	if err := deps.Mailer.Send(user.Email, subject, body); err != nil {
		log.Errorf("[Auth] failed to send reset mail to user %d: %v", user.ID, err)
	}
	return accepted()
}

// HandleAPIPasswordResetConfirm sets a new password with a reset token.
func HandleAPIPasswordResetConfirm(c *fiber.Ctx) error {
	var req PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationMessage(err))
	}

	code, msg, err := resetPassword(c.UserContext(), req.Token, req.Password)
	if err != nil {
		return internalError(c, msg, err)
	}
	if code != "" {
		return jsonError(c, fiber.StatusBadRequest, code, msg)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// resetPassword sets the new password when the token is usable. A rejected
// token yields an error code and message, a storage failure an error.
func resetPassword(ctx context.Context, token, password string) (code, msg string, err error) {
	claims, err := security.VerifyPasswordResetToken(token, deps.ResetSecret)
	if errors.Is(err, security.ErrTokenExpired) {
		return "expired_token", "The reset link has expired.", nil
	}
	if err != nil {
		return "invalid_token", "The reset link is invalid.", nil
	}

	user, err := deps.Users.GetByID(ctx, claims.UserID)
	if err != nil || user.PasswordStamp() != claims.Stamp {
		return "invalid_token", "The reset link is invalid.", nil
	}

	if err := user.SetPassword(password); err != nil {
		return "", "Failed to set password", err
	}
	if err := deps.Users.Update(ctx, user); err != nil {
		return "", "Failed to save password", err
	}
	log.Infof("[Auth] password reset for user %d", user.ID)
	return "", "", nil
}
