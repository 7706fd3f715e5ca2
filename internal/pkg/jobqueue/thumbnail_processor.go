package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/blobstore"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/imageprocessor"
)

// ThumbnailRecords is the slice of the photo repository the processor needs.
type ThumbnailRecords interface {
	GetByDay(ctx context.Context, userID uint, day calendar.Date) (*models.Photo, error)
	SetThumbnailKey(ctx context.Context, userID uint, day calendar.Date, key string) error
}

// ThumbnailProcessor renders the WebP preview of a day's picture.
type ThumbnailProcessor struct {
	Records ThumbnailRecords
	Blobs   blobstore.Store
	Width   int
}

// Handle implements Handler for JobTypePhotoThumbnail.
func (p *ThumbnailProcessor) Handle(ctx context.Context, job *Job) error {
	var payload ThumbnailPayload
	if err := job.Decode(&payload); err != nil {
		return fmt.Errorf("invalid thumbnail payload: %w", err)
	}
	day, err := payload.Day()
	if err != nil {
		return fmt.Errorf("invalid thumbnail date %q: %w", payload.Date, err)
	}

	photo, err := p.Records.GetByDay(ctx, payload.UserID, day)
	if err != nil {
		return fmt.Errorf("failed to load photo %d/%s: %w", payload.UserID, day, err)
	}
	if photo.ObjectKey == "" {
		log.Warnf("[JobQueue] Photo %d/%s has no object, skipping thumbnail", payload.UserID, day)
		return nil
	}

	data, err := p.Blobs.Get(ctx, photo.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", photo.ObjectKey, err)
	}

	width := p.Width
	if width <= 0 {
		width = imageprocessor.ThumbnailWidth
	}
	thumb, err := imageprocessor.Thumbnail(data, width)
	if err != nil {
		return fmt.Errorf("failed to render thumbnail: %w", err)
	}

	key := blobstore.ThumbnailKey(payload.UserID, day)
	if err := p.Blobs.Put(ctx, key, thumb, imageprocessor.WebPContentType); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	if err := p.Records.SetThumbnailKey(ctx, payload.UserID, day, key); err != nil {
		return fmt.Errorf("failed to record thumbnail: %w", err)
	}

	log.Infof("[JobQueue] Thumbnail stored at %s", key)
	return nil
}
