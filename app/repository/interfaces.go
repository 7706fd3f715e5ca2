package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// UserRepository stores accounts. Lookups by email normalize the address.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// PhotoRepository defines the per-user photo record store.
type PhotoRepository interface {
	// ListDays returns the day of every photo the user has uploaded.
	ListDays(ctx context.Context, userID uint) ([]models.Photo, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Photo, error)
	GetByDay(ctx context.Context, userID uint, day calendar.Date) (*models.Photo, error)
	// Upsert creates the day's record or merges the given fields into it.
	Upsert(ctx context.Context, photo *models.Photo) error
	SetThumbnailKey(ctx context.Context, userID uint, day calendar.Date, key string) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// Repositories bundles the stores the handlers are built on.
type Repositories struct {
	User  UserRepository
	Photo PhotoRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Photo: NewPhotoRepository(db),
	}
}
