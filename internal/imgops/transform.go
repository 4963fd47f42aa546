package imgops

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/hpungsan/docmint/internal/errors"
)

// MaxDimension caps each side of a resize target.
const MaxDimension = 10000

// ResizeSpec describes a target size. In percent mode both dimensions are
// derived from Percent and Width/Height are ignored. With LockAspect the
// height is derived from Width and the source aspect ratio.
type ResizeSpec struct {
	Percent    int
	UsePercent bool
	Width      int
	Height     int
	LockAspect bool
}

// TargetSize computes the output dimensions for a w0×h0 source. A derived
// side larger than MaxDimension is an InvalidConfig error on the option it
// was derived from.
func TargetSize(w0, h0 int, spec ResizeSpec) (int, int, error) {
	if w0 <= 0 || h0 <= 0 {
		return 0, 0, fmt.Errorf("source image is empty")
	}
	if spec.UsePercent {
		if spec.Percent <= 0 {
			return 0, 0, fmt.Errorf("percent must be positive")
		}
		w, h := scale(w0, spec.Percent, 100), scale(h0, spec.Percent, 100)
		return w, h, checkTarget("percent", w, h)
	}
	if spec.Width <= 0 {
		return 0, 0, fmt.Errorf("width must be positive")
	}
	if spec.LockAspect {
		h := scale(h0, spec.Width, w0)
		return spec.Width, h, checkTarget("width", spec.Width, h)
	}
	if spec.Height <= 0 {
		return 0, 0, fmt.Errorf("height must be positive")
	}
	return spec.Width, spec.Height, checkTarget("height", spec.Width, spec.Height)
}

func checkTarget(option string, w, h int) error {
	if w > MaxDimension || h > MaxDimension {
		return errors.NewInvalidConfig(option, fmt.Sprintf("result would be %d×%d px; each side is limited to %d", w, h, MaxDimension))
	}
	return nil
}

// scale returns round(v·num/den), at least 1.
func scale(v, num, den int) int {
	n := int(math.Round(float64(v) * float64(num) / float64(den)))
	return max(n, 1)
}

// Resize resamples img to spec with a Lanczos filter.
func Resize(img image.Image, spec ResizeSpec) (image.Image, error) {
	b := img.Bounds()
	w, h, err := TargetSize(b.Dx(), b.Dy(), spec)
	if err != nil {
		return nil, err
	}
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Filter is a named image filter.
type Filter string

const (
	FilterNone      Filter = "none"
	FilterGrayscale Filter = "grayscale"
	FilterBlur      Filter = "blur"
	FilterSharpen   Filter = "sharpen"
	FilterContour   Filter = "contour"
)

// Filters lists the filter names offered to users.
var Filters = []string{
	string(FilterNone), string(FilterGrayscale), string(FilterBlur),
	string(FilterSharpen), string(FilterContour),
}

// contourKernel is an 8-neighbour edge detector; with the bias below edges
// come out dark on a white background.
var contourKernel = [9]float64{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

// Apply runs filter f over img.
func Apply(img image.Image, f Filter) (image.Image, error) {
	switch f {
	case FilterNone, "":
		return img, nil
	case FilterGrayscale:
		return imaging.Grayscale(img), nil
	case FilterBlur:
		return imaging.Blur(img, 2), nil
	case FilterSharpen:
		return imaging.Sharpen(img, 1), nil
	case FilterContour:
		return imaging.Convolve3x3(img, contourKernel, &imaging.ConvolveOptions{Bias: 255}), nil
	}
	return nil, fmt.Errorf("unknown filter %q", f)
}

// Rotate turns img counter-clockwise by degrees. The canvas grows to fit the
// rotated image; uncovered corners are transparent.
func Rotate(img image.Image, degrees int) image.Image {
	d := ((degrees % 360) + 360) % 360
	switch d {
	case 0:
		return img
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return imaging.Rotate(img, float64(d), color.Transparent)
}
