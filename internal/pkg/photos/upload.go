package photos

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/blobstore"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/opad/internal/pkg/upload"
)

// UploadRequest is one picture for one day.
type UploadRequest struct {
	UserID   uint
	Date     calendar.Date
	Data     []byte
	Filename string
	// VerifyCaptureDate requires the EXIF capture date to equal Date.
	// Set for back-filled days, not for today's camera shot.
	VerifyCaptureDate bool
}

// Upload stores the picture and merges the day's record.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Photo, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("upload without a date")
	}
	if req.Date.After(s.Today()) {
		return nil, ErrFutureDate
	}

	limit := s.cfg.MaxBytes
	if limit <= 0 {
		limit = upload.MaxPhotoBytes()
	}
	if err := upload.ValidateSize(int64(len(req.Data)), limit); err != nil {
		return nil, err
	}
	head := req.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidateImageBySniff(req.Filename, head); err != nil {
		return nil, err
	}

	meta, err := imageprocessor.ExtractMetadata(req.Data)
	if err != nil {
		log.Debugf("[Photos] no metadata for upload of user %d: %v", req.UserID, err)
	}
	if req.VerifyCaptureDate {
		if meta.TakenAt == nil {
			return nil, ErrNoCaptureDate
		}
		if taken := calendar.DateOf(*meta.TakenAt); !taken.Equal(req.Date) {
			return nil, fmt.Errorf("%w: taken %s, day %s", ErrCaptureDateMismatch, taken, req.Date)
		}
	}

	normalized, err := imageprocessor.ToPNG(req.Data)
	if err != nil {
		return nil, err
	}

	key := blobstore.ObjectKey(req.UserID, req.Date)
	if err := s.blobs.Put(ctx, key, normalized.Data, imageprocessor.PNGContentType); err != nil {
		return nil, fmt.Errorf("failed to store picture: %w", err)
	}

	url := s.blobs.URL(key)
	if url == "" {
		url = s.imageRoute(req.Date)
	}

	photo := &models.Photo{
		UserID:      req.UserID,
		URL:         url,
		ObjectKey:   key,
		ContentType: imageprocessor.PNGContentType,
		Size:        int64(len(normalized.Data)),
		Width:       normalized.Width,
		Height:      normalized.Height,
		CameraModel: meta.CameraModel,
		TakenAt:     meta.TakenAt,
	}
	photo.SetDate(req.Date)
	if err := s.records.Upsert(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo record: %w", err)
	}

	s.cacheDelete(ctx, photoCacheKey(req.UserID, req.Date), streakCacheKey(req.UserID, s.Today()))

	if s.thumbs != nil {
		if err := s.thumbs.EnqueueThumbnail(ctx, req.UserID, req.Date); err != nil {
			log.Warnf("[Photos] thumbnail for user %d day %s not queued: %v", req.UserID, req.Date, err)
		}
	}

	log.Infof("[Photos] stored %s (%dx%d) for user %d", key, normalized.Width, normalized.Height, req.UserID)
	return photo, nil
}

// DeleteAll removes every picture and record of the user. Blobs go first
// so a failure leaves records that still point at what is left.
func (s *Service) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	photos, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteBlobsLimit)
	for _, p := range photos {
		for _, key := range []string{p.ObjectKey, p.ThumbnailKey} {
			if key == "" {
				continue
			}
			key := key
			g.Go(func() error {
				if err := s.blobs.Delete(gctx, key); err != nil {
					return fmt.Errorf("failed to delete %s: %w", key, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n, err := s.records.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete photo records: %w", err)
	}

	keys := make([]string, 0, len(photos)+1)
	for _, p := range photos {
		keys = append(keys, photoCacheKey(userID, p.Date()))
	}
	keys = append(keys, streakCacheKey(userID, s.Today()))
	s.cacheDelete(ctx, keys...)

	log.Infof("[Photos] deleted %d photos of user %d", n, userID)
	return n, nil
}
