package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// Photo is the record of one day's picture. A user has at most one per day.
type Photo struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UUID         string     `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_photos_user_day,priority:1;index" json:"user_id"`
	Day          time.Time  `gorm:"type:date;not null;uniqueIndex:idx_photos_user_day,priority:2" json:"-"`
	DayKey       string     `gorm:"type:varchar(8);not null;index" json:"day_key"`
	URL          string     `gorm:"type:varchar(512)" json:"url"`
	ObjectKey    string     `gorm:"type:varchar(255)" json:"-"`
	ThumbnailKey string     `gorm:"type:varchar(255);default:null" json:"-"`
	ContentType  string     `gorm:"type:varchar(50)" json:"content_type"`
	Size         int64      `gorm:"type:bigint" json:"size"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	CameraModel  *string    `gorm:"type:varchar(100);default:null" json:"camera_model,omitempty"`
	TakenAt      *time.Time `gorm:"type:datetime;default:null" json:"taken_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

// Date returns the calendar day the photo belongs to.
func (p *Photo) Date() calendar.Date {
	if p.Day.IsZero() {
		return calendar.Date{}
	}
	return calendar.DateOf(p.Day)
}

// SetDate sets Day and DayKey together.
func (p *Photo) SetDate(d calendar.Date) {
	p.Day = d.Time()
	p.DayKey = d.Key()
}

// HasImage reports whether the record points at an uploaded picture.
func (p *Photo) HasImage() bool {
	return p.URL != ""
}
