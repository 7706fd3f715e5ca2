package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

var ErrNoCaptureDate = errors.New("image has no capture date")

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// Metadata is the EXIF information kept on a photo record.
type Metadata struct {
	TakenAt     *time.Time
	CameraModel *string
}

// ExtractMetadata reads EXIF data from an encoded image. Images without
// EXIF return empty Metadata and no error.
func ExtractMetadata(data []byte) (Metadata, error) {
	var meta Metadata

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		if exif.IsCriticalError(err) {
			return meta, nil
		}
		// non-critical errors still return usable tags
		if x == nil {
			return meta, nil
		}
	}

	if m, err := x.Get(exif.Model); err == nil {
		s := strings.TrimSpace(strings.Trim(m.String(), `"`))
		if s != "" {
			meta.CameraModel = &s
		}
	}

	if dt, err := x.DateTime(); err == nil {
		meta.TakenAt = &dt
	}

	return meta, nil
}

// CaptureTime returns when the picture was taken according to its EXIF
// DateTimeOriginal or DateTime tag.
func CaptureTime(data []byte) (time.Time, error) {
	meta, err := ExtractMetadata(data)
	if err != nil {
		return time.Time{}, fmt.Errorf("read exif: %w", err)
	}
	if meta.TakenAt == nil {
		return time.Time{}, ErrNoCaptureDate
	}
	return *meta.TakenAt, nil
}
