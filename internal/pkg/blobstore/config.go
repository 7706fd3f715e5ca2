package blobstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/env"
)

const (
	DriverS3    = "s3"
	DriverLocal = "local"

	DefaultPresignTTL = 15 * time.Minute
)

// Config holds the blob store configuration
type Config struct {
	Driver          string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN or bucket URL stored on photo records
	LocalDir        string
	LocalURLPrefix  string
	PresignTTL      time.Duration
}

// LoadConfig loads the blob store configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Driver:          strings.ToLower(env.GetEnv("BLOB_DRIVER", DriverLocal)),
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		LocalDir:        env.GetEnv("BLOB_LOCAL_DIR", "./uploads"),
		LocalURLPrefix:  strings.TrimRight(env.GetEnv("BLOB_LOCAL_URL_PREFIX", "/uploads"), "/"),
		PresignTTL:      time.Duration(env.GetEnvInt("S3_PRESIGN_TTL_SECONDS", int(DefaultPresignTTL/time.Second))) * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverLocal:
		if c.LocalDir == "" {
			return errors.New("BLOB_LOCAL_DIR is required for the local blob driver")
		}
	case DriverS3:
		if c.AccessKeyID == "" {
			return errors.New("S3_ACCESS_KEY_ID is required for the s3 blob driver")
		}
		if c.SecretAccessKey == "" {
			return errors.New("S3_SECRET_ACCESS_KEY is required for the s3 blob driver")
		}
		if c.BucketName == "" {
			return errors.New("S3_BUCKET_NAME is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.Driver)
	}
	if c.PresignTTL <= 0 {
		c.PresignTTL = DefaultPresignTTL
	}
	return nil
}

// ObjectKey is where a day's picture is stored:
// Users/{uid}/DailyPictures/{MM.DD.YY}.png
func ObjectKey(userID uint, day calendar.Date) string {
	return fmt.Sprintf("%s%s.png", UserPrefix(userID), day.Key())
}

// ThumbnailKey is the WebP preview next to the picture.
func ThumbnailKey(userID uint, day calendar.Date) string {
	return fmt.Sprintf("%sthumbs/%s.webp", UserPrefix(userID), day.Key())
}

// UserPrefix is the folder holding every object of a user.
func UserPrefix(userID uint) string {
	return fmt.Sprintf("Users/%d/DailyPictures/", userID)
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}
