package pagecost

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension caps the larger side of a page image before comparison.
	MaxDimension = 420
	// BandMargin is the fraction of height dropped from the top and from the
	// bottom of a page to exclude headers, footers and page numbers.
	BandMargin = 0.12
)

// ErrEmptyImage is returned when a page image, or the region shared by two
// page images, has no pixels.
var ErrEmptyImage = errors.New("pagecost: empty image")

// Differ counts mismatched pixels between two equally sized images.
type Differ interface {
	CountMismatched(a, b *image.RGBA, threshold float64, includeAA bool) (int, error)
}

// DifferFunc adapts a function to the Differ interface.
type DifferFunc func(a, b *image.RGBA, threshold float64, includeAA bool) (int, error)

// CountMismatched calls f.
func (f DifferFunc) CountMismatched(a, b *image.RGBA, threshold float64, includeAA bool) (int, error) {
	return f(a, b, threshold, includeAA)
}

// Downscale returns an RGBA copy of img whose larger side is at most maxDim,
// preserving aspect ratio. Images already within the cap are copied unscaled.
func Downscale(img image.Image, maxDim int) (*image.RGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()

	if maxDim > 0 && max(w, h) > maxDim {
		scale := float64(maxDim) / float64(max(w, h))
		w = max(1, int(math.Round(float64(w)*scale)))
		h = max(1, int(math.Round(float64(h)*scale)))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
		return dst, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	return dst, nil
}

// ContentBand returns the central vertical band of img, excluding BandMargin
// of the height at the top and at the bottom. The band shares img's pixels.
// Images too short to lose any rows are returned whole.
func ContentBand(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	margin := int(float64(b.Dy()) * BandMargin)
	if margin == 0 || b.Dy()-2*margin <= 0 {
		return img
	}
	band := image.Rect(b.Min.X, b.Min.Y+margin, b.Max.X, b.Max.Y-margin)
	return img.SubImage(band).(*image.RGBA)
}

// prepareBand downscales img and cuts its content band.
func prepareBand(img image.Image) (*image.RGBA, error) {
	scaled, err := Downscale(img, MaxDimension)
	if err != nil {
		return nil, err
	}
	return ContentBand(scaled), nil
}

// commonCrop trims both images to the overlapping width and height, anchored
// at their top-left corners.
func commonCrop(a, b *image.RGBA) (*image.RGBA, *image.RGBA) {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())
	ca := a.SubImage(image.Rect(ab.Min.X, ab.Min.Y, ab.Min.X+w, ab.Min.Y+h)).(*image.RGBA)
	cb := b.SubImage(image.Rect(bb.Min.X, bb.Min.Y, bb.Min.X+w, bb.Min.Y+h)).(*image.RGBA)
	return ca, cb
}

// bandCost returns the mismatched-pixel fraction of two prepared bands.
func bandCost(a, b *image.RGBA, threshold float64, includeAA bool, differ Differ) (float64, error) {
	ca, cb := commonCrop(a, b)
	area := ca.Bounds().Dx() * ca.Bounds().Dy()
	if area == 0 {
		return 0, ErrEmptyImage
	}
	count, err := differ.CountMismatched(ca, cb, threshold, includeAA)
	if err != nil {
		return 0, fmt.Errorf("pixel difference: %w", err)
	}
	return clamp01(float64(count) / float64(area)), nil
}

// PixelCost returns the fraction of mismatched pixels between the content
// bands of a and b. It is 0 for identical bands and approaches 1 as they
// diverge.
func PixelCost(a, b image.Image, threshold float64, includeAA bool, differ Differ) (float64, error) {
	if differ == nil {
		return 0, errors.New("pagecost: nil differ")
	}
	bandA, err := prepareBand(a)
	if err != nil {
		return 0, err
	}
	bandB, err := prepareBand(b)
	if err != nil {
		return 0, err
	}
	return bandCost(bandA, bandB, threshold, includeAA, differ)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
