package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("blob not found")

// Store keeps photo files addressed by object key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL is the long-lived address saved on the photo record, "" if the
	// store has none.
	URL(key string) string
	// PresignGet returns a short-lived download address.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New opens the store selected by cfg.Driver.
func New(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverS3:
		return NewClient(ctx, cfg)
	case DriverLocal:
		return NewLocalStore(cfg.LocalDir, cfg.LocalURLPrefix)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
