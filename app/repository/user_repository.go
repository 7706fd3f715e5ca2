package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{})
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user := new(models.User)
	if err := r.db.WithContext(ctx).First(user, id).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail matches the normalized address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Take(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.users(ctx).Where("email = ?", models.NormalizeEmail(email)).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// TouchLastLogin leaves updated_at alone.
func (r *userRepository) TouchLastLogin(ctx context.Context, id uint) error {
	return r.users(ctx).Where("id = ?", id).UpdateColumn("last_login_at", time.Now().UTC()).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}
