package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/internal/pkg/session"
	"github.com/ManuelReschke/opad/internal/pkg/streak"
	"github.com/ManuelReschke/opad/internal/pkg/usercontext"
)

// HandleGetAccount returns the signed-in account with its photo count and streak.
func HandleGetAccount(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	user, err := deps.Users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user", err)
	}

	photoCount, err := deps.Photos.Count(c.UserContext(), userID)
	if err != nil {
		return internalError(c, "Failed to count photos", err)
	}

	return c.JSON(fiber.Map{
		"id":            user.ID,
		"email":         user.Email,
		"status":        user.Status,
		"created_at":    user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(user.LastLoginAt),
		"photo_count":   photoCount,
		"streak":        streakOrZero(c, userID),
	})
}

// HandleDeleteAccount removes every photo, then the user, then the session.
func HandleDeleteAccount(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	if _, err := deps.Photos.DeleteAll(c.UserContext(), userID); err != nil {
		return internalError(c, "Failed to delete photos", err)
	}
	if err := deps.Users.Delete(c.UserContext(), userID); err != nil {
		return internalError(c, "Failed to delete account", err)
	}
	if err := session.Logout(c); err != nil {
		log.Warnf("[Auth] session of deleted user %d not destroyed: %v", userID, err)
	}
	log.Infof("[Auth] deleted user %d", userID)
	return c.SendStatus(fiber.StatusNoContent)
}

// streakOrZero never fails the request; a broken fetch shows 0.
func streakOrZero(c *fiber.Ctx, userID uint) streak.Summary {
	sum, err := deps.Photos.Streak(c.UserContext(), userID)
	if err != nil {
		log.Warnf("[API] streak for user %d unavailable: %v", userID, err)
		return streak.Summary{}
	}
	return sum
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
