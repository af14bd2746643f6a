package pixeldiff

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/orisano/pixelmatch"
)

// DefaultThreshold is the matching threshold used when none is configured.
const DefaultThreshold = 0.1

// ErrSizeMismatch is returned when the two images do not share dimensions.
var ErrSizeMismatch = errors.New("pixeldiff: image sizes do not match")

// Options controls mismatch sensitivity.
type Options struct {
	// Threshold in [0,1]; smaller values are more sensitive.
	Threshold float64
	// IncludeAA counts anti-aliased pixels as mismatches instead of skipping them.
	IncludeAA bool
}

// Count returns the number of mismatched pixels between a and b.
func Count(a, b *image.RGBA, opts Options) (int, error) {
	if a == nil || b == nil {
		return 0, errors.New("pixeldiff: nil image")
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 1 {
		return 0, fmt.Errorf("pixeldiff: threshold %v outside [0,1]", opts.Threshold)
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	if ab.Empty() {
		return 0, nil
	}

	matchOpts := []pixelmatch.MatchOption{pixelmatch.Threshold(opts.Threshold)}
	if opts.IncludeAA {
		matchOpts = append(matchOpts, pixelmatch.IncludeAntiAlias)
	}
	diff, err := pixelmatch.MatchPixel(compact(a), compact(b), matchOpts...)
	if errors.Is(err, pixelmatch.ErrImageSizesNotMatch) {
		return 0, fmt.Errorf("%w: %v", ErrSizeMismatch, err)
	}
	if err != nil {
		return 0, fmt.Errorf("pixeldiff: %w", err)
	}
	return diff, nil
}

// Differ exposes Count through the cost model's pixel-difference interface.
type Differ struct{}

// CountMismatched implements pagecost.Differ.
func (Differ) CountMismatched(a, b *image.RGBA, threshold float64, includeAA bool) (int, error) {
	return Count(a, b, Options{Threshold: threshold, IncludeAA: includeAA})
}

// compact returns img as a zero-origin image whose rows are tightly packed.
// Sub-images are copied; the matcher requires equal bounds on both sides and
// reads whole strides when checking for identical buffers.
func compact(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if b.Min == (image.Point{}) && img.Stride == rowLen && len(img.Pix) == rowLen*b.Dy() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+rowLen], img.Pix[start:start+rowLen])
	}
	return out
}
