package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"
)

const (
	// ThumbnailWidth is the width of the calendar cell previews.
	ThumbnailWidth = 200
	webpQuality    = 85

	PNGContentType  = "image/png"
	WebPContentType = "image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// Normalized is a picture re-encoded for storage.
type Normalized struct {
	Data   []byte
	Width  int
	Height int
}

// ToPNG decodes any supported image, applies the EXIF orientation and
// encodes it as PNG.
func ToPNG(data []byte) (*Normalized, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("error encoding PNG: %w", err)
	}

	b := img.Bounds()
	return &Normalized{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// Thumbnail scales the picture to width (keeping the aspect ratio) and
// encodes it as lossy WebP.
func Thumbnail(data []byte, width int) ([]byte, error) {
	if width <= 0 {
		width = ThumbnailWidth
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	return encodeWebP(img)
}

func encodeWebP(img image.Image) ([]byte, error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return nil, fmt.Errorf("error creating encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("error encoding WebP image: %w", err)
	}
	return buf.Bytes(), nil
}
