// Package testutil builds small images for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

const exifDateTimeTag = 0x0132

func fill(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

// PNG returns an encoded w x h PNG.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, fill(w, h))
	return buf.Bytes()
}

// JPEG returns an encoded w x h JPEG without metadata.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, fill(w, h), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

// JPEGWithDateTime returns a JPEG whose EXIF block carries a single
// DateTime tag. dateTime uses the EXIF layout "2006:01:02 15:04:05".
func JPEGWithDateTime(w, h int, dateTime string) []byte {
	plain := JPEG(w, h)

	var app1 bytes.Buffer
	app1.WriteString("Exif\x00\x00")
	app1.Write(tiffWithDateTime(dateTime))

	var out bytes.Buffer
	out.Write(plain[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(app1.Len()+2))
	out.Write(app1.Bytes())
	out.Write(plain[2:])
	return out.Bytes()
}

// tiffWithDateTime is a little-endian TIFF header with one IFD holding one
// ASCII entry.
func tiffWithDateTime(dateTime string) []byte {
	value := append([]byte(dateTime), 0)
	const ifdOffset = 8
	const valueOffset = ifdOffset + 2 + 12 + 4

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("II")
	_ = binary.Write(&b, le, uint16(42))
	_ = binary.Write(&b, le, uint32(ifdOffset))
	_ = binary.Write(&b, le, uint16(1))
	_ = binary.Write(&b, le, uint16(exifDateTimeTag))
	_ = binary.Write(&b, le, uint16(2)) // ASCII
	_ = binary.Write(&b, le, uint32(len(value)))
	_ = binary.Write(&b, le, uint32(valueOffset))
	_ = binary.Write(&b, le, uint32(0)) // no next IFD
	b.Write(value)
	return b.Bytes()
}
