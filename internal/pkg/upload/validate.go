package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ManuelReschke/opad/internal/pkg/env"
)

const DefaultMaxPhotoBytes int64 = 25 << 20

var (
	ErrUnsupportedType = errors.New("only JPG, JPEG, PNG, GIF, WEBP and BMP images are supported")
	ErrHTMLContent     = errors.New("invalid file type: HTML content is not allowed")
	ErrSVGContent      = errors.New("SVG/XML images are not supported")
	ErrTooLarge        = errors.New("the picture is too large")
	ErrEmpty           = errors.New("the picture is empty")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	// SVG is excluded due to XSS risk without sanitization
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// MaxPhotoBytes is the upload limit from MAX_PHOTO_BYTES.
func MaxPhotoBytes() int64 {
	v := int64(env.GetEnvInt("MAX_PHOTO_BYTES", int(DefaultMaxPhotoBytes)))
	if v <= 0 {
		return DefaultMaxPhotoBytes
	}
	return v
}

// ValidateImageBySniff checks the provided filename (extension) and the first bytes (head)
// against a whitelist of image types. Returns detected mime or an error.
// An empty filename skips the extension check (camera uploads have none).
func ValidateImageBySniff(filename string, head []byte) (string, error) {
	if len(head) == 0 {
		return "", ErrEmpty
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if filename != "" && !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrHTMLContent
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrSVGContent
	}

	if allowedMime[detected] {
		return detected, nil
	}

	return "", ErrUnsupportedType
}

// ValidateSize rejects empty and oversized uploads.
func ValidateSize(size, max int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if max > 0 && size > max {
		return ErrTooLarge
	}
	return nil
}
