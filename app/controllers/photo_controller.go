package controllers

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/photos"
	"github.com/ManuelReschke/opad/internal/pkg/upload"
	"github.com/ManuelReschke/opad/internal/pkg/usercontext"
)

// PhotoFormField is the multipart field carrying the picture.
const PhotoFormField = "photo"

type photoResponse struct {
	Date        calendar.Date `json:"date"`
	DayKey      string        `json:"day_key"`
	URL         string        `json:"url"`
	ContentType string        `json:"content_type"`
	Size        int64         `json:"size"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	CameraModel *string       `json:"camera_model,omitempty"`
	TakenAt     *time.Time    `json:"taken_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newPhotoResponse(p *models.Photo) photoResponse {
	return photoResponse{
		Date:        p.Date(),
		DayKey:      p.DayKey,
		URL:         p.URL,
		ContentType: p.ContentType,
		Size:        p.Size,
		Width:       p.Width,
		Height:      p.Height,
		CameraModel: p.CameraModel,
		TakenAt:     p.TakenAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// HandleGetPhoto returns the record of one day.
func HandleGetPhoto(c *fiber.Ctx, date string) error {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return invalidDate(c)
	}
	photo, err := deps.Photos.Get(c.UserContext(), usercontext.GetUserID(c), day)
	if err != nil {
		return photoError(c, err)
	}
	return c.JSON(newPhotoResponse(photo))
}

// HandleGetPhotoImage redirects to a short-lived URL of the picture.
func HandleGetPhotoImage(c *fiber.Ctx, date string) error {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return invalidDate(c)
	}
	url, err := deps.Photos.ImageURL(c.UserContext(), usercontext.GetUserID(c), day)
	if err != nil {
		return photoError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Redirect(url, fiber.StatusFound)
}

// HandleUploadToday stores the picture taken today. No capture date check.
func HandleUploadToday(c *fiber.Ctx) error {
	return handleUpload(c, deps.Photos.Today(), false)
}

// HandlePutPhoto fills in a past day. The picture must have been taken on it.
func HandlePutPhoto(c *fiber.Ctx, date string) error {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return invalidDate(c)
	}
	verify := !day.Equal(deps.Photos.Today())
	return handleUpload(c, day, verify)
}

func handleUpload(c *fiber.Ctx, day calendar.Date, verifyCaptureDate bool) error {
	file, err := c.FormFile(PhotoFormField)
	if err != nil {
		return badRequest(c, "multipart field 'photo' is required")
	}
	if err := upload.ValidateSize(file.Size, upload.MaxPhotoBytes()); err != nil {
		return photoError(c, err)
	}

	f, err := file.Open()
	if err != nil {
		return internalError(c, "Failed to open upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return internalError(c, "Failed to read upload", err)
	}

	photo, err := deps.Photos.Upload(c.UserContext(), photos.UploadRequest{
		UserID:            usercontext.GetUserID(c),
		Date:              day,
		Data:              data,
		Filename:          file.Filename,
		VerifyCaptureDate: verifyCaptureDate,
	})
	if err != nil {
		return photoError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newPhotoResponse(photo))
}
