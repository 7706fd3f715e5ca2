// Package photos owns a user's daily pictures: the records, the blobs and
// the derived calendar views.
package photos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/blobstore"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/constants"
	"github.com/ManuelReschke/opad/internal/pkg/monthview"
)

var (
	ErrFutureDate          = errors.New("photos cannot be added for days in the future")
	ErrNoCaptureDate       = errors.New("the picture carries no capture date")
	ErrCaptureDateMismatch = errors.New("the picture was not taken on that day")
	ErrNotFound            = errors.New("no photo for that day")
)

const (
	photoCacheTTL    = time.Hour
	missingCacheTTL  = 5 * time.Minute
	streakCacheTTL   = time.Hour
	deleteBlobsLimit = 8
)

// Records is the photo metadata store.
type Records interface {
	ListDays(ctx context.Context, userID uint) ([]models.Photo, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Photo, error)
	GetByDay(ctx context.Context, userID uint, day calendar.Date) (*models.Photo, error)
	Upsert(ctx context.Context, photo *models.Photo) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// Cache is a string key/value cache. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ThumbnailQueue schedules preview rendering for an uploaded day.
type ThumbnailQueue interface {
	EnqueueThumbnail(ctx context.Context, userID uint, date calendar.Date) error
}

type Config struct {
	// Location decides what "today" is.
	Location *time.Location
	// LookupLimit bounds concurrent cell lookups per month render.
	LookupLimit int
	MaxBytes    int64
	// BaseURL prefixes the app image route for stores without public URLs.
	BaseURL    string
	PresignTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Service struct {
	records Records
	blobs   blobstore.Store
	cache   Cache
	thumbs  ThumbnailQueue
	cfg     Config
	now     func() time.Time
}

// NewService wires the service. cache and thumbs may be nil.
func NewService(records Records, blobs blobstore.Store, cache Cache, thumbs ThumbnailQueue, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.LookupLimit <= 0 {
		cfg.LookupLimit = monthview.DefaultLookupLimit
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = blobstore.DefaultPresignTTL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		records: records,
		blobs:   blobs,
		cache:   cache,
		thumbs:  thumbs,
		cfg:     cfg,
		now:     now,
	}
}

// Today is the current date in the configured zone.
func (s *Service) Today() calendar.Date {
	return calendar.DateOf(s.now().In(s.cfg.Location))
}

func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Get returns the record of one day.
func (s *Service) Get(ctx context.Context, userID uint, date calendar.Date) (*models.Photo, error) {
	photo, err := s.records.GetByDay(ctx, userID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load photo %s: %w", date, err)
	}
	return photo, nil
}

// Count is the number of days the user has a picture for.
func (s *Service) Count(ctx context.Context, userID uint) (int64, error) {
	n, err := s.records.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos of user %d: %w", userID, err)
	}
	return n, nil
}

// LookupPhoto resolves the URL of a day's picture through the cache.
func (s *Service) LookupPhoto(ctx context.Context, userID uint, date calendar.Date) (string, bool, error) {
	key := photoCacheKey(userID, date)
	if url, ok := s.cacheGet(ctx, key); ok {
		return url, url != "", nil
	}

	photo, err := s.Get(ctx, userID, date)
	if errors.Is(err, ErrNotFound) {
		s.cacheSet(ctx, key, "", missingCacheTTL)
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	s.cacheSet(ctx, key, photo.URL, photoCacheTTL)
	return photo.URL, true, nil
}

// Month renders the grid of ym with the state of every cell.
func (s *Service) Month(ctx context.Context, userID uint, ym calendar.YearMonth) monthview.View {
	today := s.Today()
	grid := calendar.BuildMonthGrid(ym, today)
	return monthview.Render(ctx, s, userID, grid, today, s.cfg.LookupLimit)
}

// Months lists every month from the account's creation to now.
func (s *Service) Months(user *models.User) []calendar.YearMonth {
	current := s.Today().YearMonth()
	if user == nil || user.CreatedAt.IsZero() {
		return []calendar.YearMonth{current}
	}
	first := calendar.DateOf(user.CreatedIn(s.cfg.Location)).YearMonth()
	if current.Before(first) {
		return []calendar.YearMonth{current}
	}
	return calendar.MonthsBetween(first, current)
}

// ImageURL returns a short-lived URL for the stored picture.
func (s *Service) ImageURL(ctx context.Context, userID uint, date calendar.Date) (string, error) {
	photo, err := s.Get(ctx, userID, date)
	if err != nil {
		return "", err
	}
	if photo.ObjectKey == "" {
		return "", ErrNotFound
	}
	url, err := s.blobs.PresignGet(ctx, photo.ObjectKey, s.cfg.PresignTTL)
	if errors.Is(err, blobstore.ErrNotFound) {
		return "", ErrNotFound
	}
	return url, err
}

func (s *Service) imageRoute(date calendar.Date) string {
	return fmt.Sprintf("%s%s/photos/%s/image", s.cfg.BaseURL, constants.APIRoute, date)
}

func photoCacheKey(userID uint, date calendar.Date) string {
	return fmt.Sprintf("photo:%d:%s", userID, date)
}

func streakCacheKey(userID uint, today calendar.Date) string {
	return fmt.Sprintf("streak:%d:%s", userID, today)
}

func (s *Service) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("[Photos] cache read %s failed: %v", key, err)
		return "", false
	}
	return val, ok
}

func (s *Service) cacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		log.Warnf("[Photos] cache write %s failed: %v", key, err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warnf("[Photos] cache invalidation failed: %v", err)
	}
}
