package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// photoMergeColumns are overwritten when a day is uploaded again.
var photoMergeColumns = []string{
	"day_key", "url", "object_key", "content_type", "size",
	"width", "height", "camera_model", "taken_at", "updated_at",
}

// photoRepository implements the PhotoRepository interface
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository instance
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) ListDays(ctx context.Context, userID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Select("day", "day_key", "url").
		Where("user_id = ?", userID).
		Order("day DESC").
		Find(&photos).Error
	return photos, err
}

func (r *photoRepository) ListByUser(ctx context.Context, userID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("day ASC").Find(&photos).Error
	return photos, err
}

func (r *photoRepository) GetByDay(ctx context.Context, userID uint, day calendar.Date) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day.String()).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Upsert inserts the record or merges it into the existing one for the same
// user and day. The row's UUID and creation time are kept.
func (r *photoRepository) Upsert(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns(photoMergeColumns),
	}).Create(photo).Error
}

func (r *photoRepository) SetThumbnailKey(ctx context.Context, userID uint, day calendar.Date, key string) error {
	res := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("user_id = ? AND day = ?", userID, day.String()).
		Update("thumbnail_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *photoRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Photo{})
	return res.RowsAffected, res.Error
}

func (r *photoRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Photo{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
