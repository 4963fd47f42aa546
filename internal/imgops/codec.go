// Package imgops implements the raster image operations: decoding, encoding,
// resizing, filtering, rotation and alpha flattening.
package imgops

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is an encodable output format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the encodable formats, as offered to users.
var Formats = []string{string(JPEG), string(PNG), string(GIF), string(BMP), string(TIFF)}

var imagingFormats = map[Format]imaging.Format{
	PNG:  imaging.PNG,
	JPEG: imaging.JPEG,
	GIF:  imaging.GIF,
	BMP:  imaging.BMP,
	TIFF: imaging.TIFF,
}

// ParseFormat maps a user-facing name (also "jpg", "tif") to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "jpg":
		return JPEG, nil
	case "tif":
		return TIFF, nil
	case PNG, JPEG, GIF, BMP, TIFF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// Ext returns the file extension written for f, without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// HasAlpha reports whether f can store transparency.
func (f Format) HasAlpha() bool {
	switch f {
	case PNG, GIF, TIFF:
		return true
	}
	return false
}

// Decoded is a decoded image with the name of its source format
// ("png", "jpeg", "gif", "bmp", "tiff", "webp").
type Decoded struct {
	Image  image.Image
	Source string
}

// Decode decodes data, applying EXIF orientation.
func Decode(data []byte) (*Decoded, error) {
	_, source, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Decoded{Image: img, Source: source}, nil
}

// SourceFormat returns the encodable format matching the source, if any.
func (d *Decoded) SourceFormat() (Format, bool) {
	f, err := ParseFormat(d.Source)
	return f, err == nil
}

// Encode writes img as f. Formats without alpha get the image flattened on
// white first. quality applies to JPEG only.
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	target, ok := imagingFormats[f]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q", f)
	}
	if !f.HasAlpha() {
		img = Flatten(img)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, target, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque white canvas of the same size.
func Flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
